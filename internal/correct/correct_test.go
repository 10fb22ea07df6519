package correct

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom/internal/table"
)

func boolsOf(t *testing.T, c *table.Column) []any {
	t.Helper()
	out := make([]any, c.Len())
	for i, v := range c.Values {
		if v.Missing {
			out[i] = nil
			continue
		}
		out[i] = v.Bool
	}
	return out
}

func TestNumericFlagBecomesBoolean(t *testing.T) {
	in := table.MustNew("t", table.IntColumn("flag", 0, 1, 1, 0, 1))
	out, changes := New(DefaultConfig()).CorrectWithLog(in)

	col, err := out.Column("flag")
	require.NoError(t, err)
	assert.Equal(t, table.KindBoolean, col.Kind)
	assert.Equal(t, []any{false, true, true, false, true}, boolsOf(t, col))
	require.Len(t, changes, 1)
	assert.Equal(t, RuleBoolFromNumeric, changes[0].Rule)
	assert.Equal(t, table.KindNumeric, changes[0].From)

	// input untouched
	assert.Equal(t, table.KindNumeric, in.Columns[0].Kind)
}

func TestFloatFlagBecomesBoolean(t *testing.T) {
	in := table.MustNew("t", table.FloatColumn("f", 1, 0, 1, 1))
	out := New(DefaultConfig()).Correct(in)
	assert.Equal(t, table.KindBoolean, out.Columns[0].Kind)
}

func TestDateStringsPromoted(t *testing.T) {
	in := table.MustNew("t", table.StringColumn("d", "2023-01-01", "2023-02-15", "not a date", "2023-03-10"))
	out, changes := New(DefaultConfig()).CorrectWithLog(in)

	col := out.Columns[0]
	assert.Equal(t, table.KindDateTime, col.Kind)
	assert.Equal(t, table.DateTime, col.Storage)
	assert.False(t, col.Values[0].Missing)
	assert.True(t, col.Values[2].Missing)
	assert.Equal(t, 2023, col.Values[3].Time.Year())
	require.Len(t, changes, 1)
	assert.Equal(t, RuleDateTime, changes[0].Rule)
	assert.Equal(t, 1, changes[0].Dropped)
}

func TestDateRatioAtThresholdNotPromoted(t *testing.T) {
	// 7 of 10 parse: exactly 0.70 does not exceed the threshold.
	vals := []string{"2023-01-01", "2023-01-02", "2023-01-03", "2023-01-04", "2023-01-05", "2023-01-06", "2023-01-07", "x", "y", "z"}
	in := table.MustNew("t", table.StringColumn("d", vals...))
	out := New(DefaultConfig()).Correct(in)
	assert.Equal(t, table.KindCategorical, out.Columns[0].Kind)
}

func TestJoinedDates(t *testing.T) {
	in := table.MustNew("t",
		table.StringColumn("joined", "2023-01-01", "2023-02-15", "2023-03-10", "bad", "2023-04-01"),
		table.StringColumn("joined2", "2023-01-01", "bad", "2023-03-10", "worse", "2023-04-01"),
	)
	out := New(DefaultConfig()).Correct(in)
	joined, _ := out.Column("joined")
	assert.Equal(t, table.KindDateTime, joined.Kind)
	assert.True(t, joined.Values[3].Missing)

	joined2, _ := out.Column("joined2")
	assert.Equal(t, table.KindCategorical, joined2.Kind)
}

func TestPortugueseYesNoBecomesBoolean(t *testing.T) {
	in := table.MustNew("t", table.StringColumn("ok", "sim", "não", "SIM", "Não"))
	out, changes := New(DefaultConfig()).CorrectWithLog(in)
	col := out.Columns[0]
	assert.Equal(t, table.KindBoolean, col.Kind)
	assert.Equal(t, []any{true, false, true, false}, boolsOf(t, col))
	require.Len(t, changes, 1)
	assert.Equal(t, RuleBoolFromText, changes[0].Rule)
}

func TestLexiconCoversEverySampledToken(t *testing.T) {
	// Full sample so the check sees every value.
	cfg := DefaultConfig()
	cfg.SampleFraction = 1
	in := table.MustNew("t", table.StringColumn("ok", "yes", "no", "Y"))
	out := New(cfg).Correct(in)
	assert.Equal(t, table.KindCategorical, out.Columns[0].Kind, "Y is outside the lexicon")

	in = table.MustNew("t", table.StringColumn("ok", "yes", "no", "n"))
	out = New(cfg).Correct(in)
	assert.Equal(t, []any{true, false, false}, boolsOf(t, out.Columns[0]))
}

func TestNonFlagNumericUntouched(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleFraction = 1
	in := table.MustNew("t", table.IntColumn("n", 0, 1, 2, 3))
	out, changes := New(cfg).CorrectWithLog(in)
	assert.Equal(t, table.KindNumeric, out.Columns[0].Kind)
	assert.Empty(t, changes)
}

func TestEmptyColumnUnchanged(t *testing.T) {
	in := table.MustNew("t",
		table.StringColumn("blank", "", "", ""),
		table.FloatColumn("nan", math.NaN(), math.NaN(), math.NaN()),
	)
	out, changes := New(DefaultConfig()).CorrectWithLog(in)
	assert.Empty(t, changes)
	assert.Equal(t, in.Fingerprint(), out.Fingerprint())
}

func TestIdempotent(t *testing.T) {
	in := fixture()
	c := New(DefaultConfig())
	once := c.Correct(in)
	twice := c.Correct(once)
	assert.Equal(t, once.Fingerprint(), twice.Fingerprint())
}

func TestDeterministic(t *testing.T) {
	in := fixture()
	a := New(DefaultConfig()).Correct(in)
	b := New(DefaultConfig()).Correct(in)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestCustomRules(t *testing.T) {
	never := Rule{
		Name:    "never",
		Applies: func(*table.Column) bool { return true },
		Convert: func(*table.Column, *Env) (*table.Column, bool) { return nil, false },
	}
	in := table.MustNew("t", table.IntColumn("flag", 0, 1))
	_, changes := New(DefaultConfig(), WithRules(never)).CorrectWithLog(in)
	assert.Empty(t, changes)
}

func TestSampleSize(t *testing.T) {
	assert.Equal(t, 1, SampleSize(0, 0.05))
	assert.Equal(t, 1, SampleSize(5, 0.05))
	assert.Equal(t, 10, SampleSize(40, 0.25))
	assert.Equal(t, 6, SampleSize(101, 0.05))
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2023-01-01", "2023-01-01T10:00:00Z", "2023/01/31", "15-Mar-2023", "2023-01-01 10:30"} {
		_, ok := ParseTime(s)
		assert.True(t, ok, s)
	}
	for _, s := range []string{"", "abc", "12.5"} {
		_, ok := ParseTime(s)
		assert.False(t, ok, s)
	}
}

func fixture() *table.Table {
	return table.MustNew("mixed",
		table.IntColumn("flag", 0, 1, 1, 0, 1, 0, 1, 1),
		table.StringColumn("when", "2023-01-01", "2023-02-15", "nope", "2023-03-10", "2023-04-01", "2023-05-01", "2023-06-01", "2023-07-01"),
		table.StringColumn("answer", "yes", "no", "yes", "yes", "no", "no", "yes", "no"),
		table.FloatColumn("x", 1.5, 2.5, 3.5, 4.5, 5.5, 6.5, 7.5, 8.5),
		table.StringColumn("city", "A", "B", "A", "C", "B", "A", "C", "C"),
	)
}

func TestTextFlagsUseNumericRule(t *testing.T) {
	in := table.MustNew("t",
		table.StringColumn("f", "0", "1", "1", "0", "1"),
		table.StringColumn("g", "1.0", "0.0", "", "1.0", "0.0"),
	)
	out, changes := New(DefaultConfig()).CorrectWithLog(in)

	f := out.Columns[0]
	assert.Equal(t, table.KindBoolean, f.Kind)
	assert.Equal(t, table.Bool, f.Storage)
	assert.Equal(t, []any{false, true, true, false, true}, boolsOf(t, f))

	g := out.Columns[1]
	assert.Equal(t, table.KindBoolean, g.Kind)
	assert.Equal(t, table.Bool, g.Storage)
	assert.Equal(t, []any{true, false, nil, true, false}, boolsOf(t, g))

	require.Len(t, changes, 2)
	for _, ch := range changes {
		assert.Equal(t, RuleBoolFromNumeric, ch.Rule, ch.Column)
		assert.Equal(t, table.Object, ch.FromStorage, ch.Column)
		assert.Equal(t, table.Bool, ch.ToStorage, ch.Column)
		assert.Zero(t, ch.Dropped, ch.Column)
	}
}

func TestParseTimeUnpadded(t *testing.T) {
	cases := map[string]time.Time{
		"2023-1-5":          time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		"2023/1/5":          time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		"1/5/2023":          time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		"5-Jan-2023":        time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		"2023-1-5 08:15:00": time.Date(2023, 1, 5, 8, 15, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, ok := ParseTime(in)
		if assert.True(t, ok, in) {
			assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
		}
	}
}

func TestUnpaddedDatesPromoted(t *testing.T) {
	in := table.MustNew("t", table.StringColumn("d", "2023-1-5", "2023-2-14", "1/3/2023", "2023-12-1", "n/a date"))
	out, changes := New(DefaultConfig()).CorrectWithLog(in)
	assert.Equal(t, table.KindDateTime, out.Columns[0].Kind)
	require.Len(t, changes, 1)
	assert.Equal(t, RuleDateTime, changes[0].Rule)
	assert.Equal(t, 1, changes[0].Dropped)
}
