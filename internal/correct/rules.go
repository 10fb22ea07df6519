package correct

import (
	"strings"
	"time"

	"github.com/KaramelBytes/tabloom/internal/table"
)

// Rule is one correction step: Applies selects candidate columns and Convert
// returns the converted column, or false to leave it for the next rule.
type Rule struct {
	Name    string
	Applies func(col *table.Column) bool
	Convert func(col *table.Column, env *Env) (*table.Column, bool)
}

// Rule names, as reported in Change.Rule.
const (
	RuleDateTime        = "datetime_promotion"
	RuleBoolFromNumeric = "boolean_from_numeric"
	RuleBoolFromText    = "boolean_from_text"
)

// DefaultRules returns the rules in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleDateTime, Applies: isCategorical, Convert: promoteDateTime},
		{Name: RuleBoolFromNumeric, Applies: notBooleanOrTime, Convert: boolFromNumeric},
		{Name: RuleBoolFromText, Applies: isCategorical, Convert: boolFromText},
	}
}

func isCategorical(col *table.Column) bool { return col.Kind == table.KindCategorical }

func notBooleanOrTime(col *table.Column) bool {
	return col.Kind != table.KindBoolean && col.Kind != table.KindDateTime
}

var timeLayouts = []string{
	time.RFC3339Nano, time.RFC3339,
	"2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006", "02-Jan-2006", "20060102",
	"2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02 15:04:05",
	"1/2/2006 15:04", "1/2/2006 15:04:05",
	// unpadded month and day
	"2006-1-2", "2006/1/2", "1/2/2006", "2-Jan-2006", "2006-1-2 15:04:05",
}

// ParseTime tries the supported layouts in order.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func promoteDateTime(col *table.Column, env *Env) (*table.Column, bool) {
	vals := make([]table.Value, col.Len())
	nonMissing, parsed := 0, 0
	for i, v := range col.Values {
		if v.Missing {
			vals[i] = table.Null()
			continue
		}
		nonMissing++
		if t, ok := ParseTime(col.Text(i)); ok {
			vals[i] = table.TimeValue(t)
			parsed++
		} else {
			vals[i] = table.Null()
		}
	}
	if nonMissing == 0 || float64(parsed)/float64(nonMissing) <= env.Config().DateTimeThreshold {
		return nil, false
	}
	return table.NewColumn(col.Name, table.DateTime, vals), true
}

var numericFlags = map[string]bool{"0": false, "1": true, "0.0": false, "1.0": true}

func boolFromNumeric(col *table.Column, env *Env) (*table.Column, bool) {
	sample := env.Sample(col)
	if len(sample) == 0 {
		return nil, false
	}
	for _, i := range sample {
		if _, ok := numericFlags[col.Text(i)]; !ok {
			return nil, false
		}
	}
	vals := make([]table.Value, col.Len())
	for i, v := range col.Values {
		b, ok := numericFlags[col.Text(i)]
		if v.Missing || !ok {
			vals[i] = table.Null()
			continue
		}
		vals[i] = table.BoolValue(b)
	}
	return table.NewColumn(col.Name, table.Bool, vals), true
}

var boolLexicon = map[string]bool{
	"true": true, "sim": true, "yes": true, "1": true, "v": true, "s": true,
	"false": false, "não": false, "no": false, "0": false, "f": false, "n": false,
}

func normalizeToken(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func boolFromText(col *table.Column, env *Env) (*table.Column, bool) {
	sample := env.Sample(col)
	if len(sample) == 0 {
		return nil, false
	}
	for _, i := range sample {
		if _, ok := boolLexicon[normalizeToken(col.Text(i))]; !ok {
			return nil, false
		}
	}
	vals := make([]table.Value, col.Len())
	for i, v := range col.Values {
		b, ok := boolLexicon[normalizeToken(col.Text(i))]
		if v.Missing || !ok {
			vals[i] = table.Null()
			continue
		}
		vals[i] = table.BoolValue(b)
	}
	return table.NewColumn(col.Name, table.Bool, vals), true
}
