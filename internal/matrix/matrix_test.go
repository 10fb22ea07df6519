package matrix

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom/internal/assoc"
	"github.com/KaramelBytes/tabloom/internal/table"
)

func fixture() *table.Table {
	return table.MustNew("m",
		table.FloatColumn("x", 1, 2, 3, 4, 5, 6),
		table.FloatColumn("y", 2, 4, 5, 8, 9, 12),
		table.StringColumn("g", "a", "a", "b", "b", "c", "c"),
		table.StringColumn("h", "p", "p", "q", "q", "q", "q"),
	)
}

func TestNumericAndCategoricalUnderCramers(t *testing.T) {
	tb := table.MustNew("t",
		table.FloatColumn("n", 1, 2, 3, 4),
		table.StringColumn("c", "a", "b", "a", "b"),
	)
	mx := Build(tb, assoc.CramersV)
	require.Equal(t, StatusOK, mx.Status)
	assert.True(t, math.IsNaN(mx.At(0, 1)))
	assert.True(t, math.IsNaN(mx.At(1, 0)))
	assert.Equal(t, 1.0, mx.At(0, 0))
	assert.Equal(t, 1.0, mx.At(1, 1))
}

func TestSingleColumnInsufficient(t *testing.T) {
	tb := table.MustNew("t", table.FloatColumn("only", 1, 2, 3))
	mx := Build(tb, assoc.Pearson)
	assert.Equal(t, StatusInsufficientColumns, mx.Status)
	assert.True(t, errors.Is(mx.Err(), ErrInsufficientColumns))
	assert.Zero(t, mx.Size())
	assert.Nil(t, mx.Dense())
	assert.Error(t, mx.WriteCSV(&bytes.Buffer{}))

	empty := table.MustNew("none")
	assert.Equal(t, StatusInsufficientColumns, Build(empty, assoc.Pearson).Status)
}

func TestDiagonalIsOneForEveryMethod(t *testing.T) {
	tb := fixture()
	for _, m := range assoc.Methods() {
		mx := Build(tb, m)
		require.Equal(t, StatusOK, mx.Status)
		for i := 0; i < mx.Size(); i++ {
			assert.Equal(t, 1.0, mx.At(i, i), "%s[%d]", m, i)
		}
	}
}

func TestTableOrderPreserved(t *testing.T) {
	mx := Build(fixture(), assoc.Pearson)
	assert.Equal(t, []string{"x", "y", "g", "h"}, mx.Labels())

	mx = Build(fixture(), assoc.Pearson, WithColumns("y", "x"))
	assert.Equal(t, []string{"y", "x"}, mx.Labels())
	v, ok := mx.Get("x", "y")
	require.True(t, ok)
	assert.Greater(t, v, 0.9)
}

func TestWithColumnsUnknown(t *testing.T) {
	mx := Build(fixture(), assoc.Pearson, WithColumns("x", "nope"))
	assert.Equal(t, StatusInvalidColumns, mx.Status)
	assert.True(t, errors.Is(mx.Err(), table.ErrUnknownColumn))
}

func TestWithColumnsSingle(t *testing.T) {
	mx := Build(fixture(), assoc.Pearson, WithColumns("x"))
	assert.Equal(t, StatusInsufficientColumns, mx.Status)
}

func TestTheilsUFillsBothTriangles(t *testing.T) {
	mx := Build(fixture(), assoc.TheilsU, WithColumns("g", "h"))
	require.Equal(t, StatusOK, mx.Status)
	assert.False(t, mx.Symmetric())
	gh, _ := mx.Get("g", "h")
	hg, _ := mx.Get("h", "g")
	assert.NotEqual(t, gh, hg)
	assert.InDelta(t, 1.0, hg, 1e-9)

	pairs := mx.TopPairs(10)
	assert.Len(t, pairs, 2)
}

func TestCellAndCSV(t *testing.T) {
	tb := table.MustNew("t",
		table.FloatColumn("a", 1, 2, 3),
		table.FloatColumn("b", 1, 2, 4),
		table.StringColumn("c", "x", "y", "x"),
	)
	mx := Build(tb, assoc.Pearson)
	assert.Equal(t, "1.00", mx.Cell(0, 0))
	assert.Equal(t, "NaN", mx.Cell(0, 2))
	assert.Len(t, strings.Split(mx.Cell(0, 1), ".")[1], 2)

	var buf bytes.Buffer
	require.NoError(t, mx.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, ",a,b,c", lines[0])
	assert.Equal(t, "a,1.00,0.98,", lines[1])
	assert.Equal(t, "c,,,1.00", lines[3])
}

func TestDenseMatchesValues(t *testing.T) {
	mx := Build(fixture(), assoc.Spearman)
	d := mx.Dense()
	r, c := d.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 4, c)
	assert.Equal(t, mx.At(0, 1), d.At(0, 1))
}

func TestValuesIsCopy(t *testing.T) {
	mx := Build(fixture(), assoc.Pearson)
	v := mx.Values()
	v[0][1] = 42
	assert.NotEqual(t, 42.0, mx.At(0, 1))
}

func TestTopPairsSymmetric(t *testing.T) {
	mx := Build(fixture(), assoc.Pearson)
	pairs := mx.TopPairs(5)
	require.Len(t, pairs, 1, "only x~y is defined")
	assert.Equal(t, "x", pairs[0].A)
	assert.Equal(t, "y", pairs[0].B)
}

func TestRangeInvariant(t *testing.T) {
	tb := fixture()
	for _, m := range assoc.Methods() {
		mx := Build(tb, m)
		lo := 0.0
		if m.Signed() {
			lo = -1
		}
		for _, row := range mx.Values() {
			for _, v := range row {
				if math.IsNaN(v) {
					continue
				}
				assert.GreaterOrEqual(t, v, lo)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	tb := fixture()
	a := c.Build(tb, assoc.Pearson)
	b := c.Build(tb, assoc.Pearson)
	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())

	c.Build(tb, assoc.Pearson, "x", "y")
	c.Build(tb, assoc.Spearman)
	assert.Equal(t, 3, c.Len())

	clone := tb.Clone()
	assert.NotSame(t, a, c.Build(clone, assoc.Pearson))

	c.Forget(tb.ID)
	assert.Equal(t, 1, c.Len())
}

func TestCacheEmptySelectionMeansAllColumns(t *testing.T) {
	c := NewCache()
	tb := fixture()
	all := c.Build(tb, assoc.Pearson)
	assert.Same(t, all, c.Build(tb, assoc.Pearson, []string{}...))
	assert.Equal(t, StatusOK, all.Status)
	assert.Equal(t, tb.Names(), all.Labels())
}
