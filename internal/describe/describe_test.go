package describe

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom/internal/table"
)

func TestNumericSummary(t *testing.T) {
	c := table.FloatColumn("v", 1, 2, 3, 4, math.NaN())
	s := Column(c)
	assert.Equal(t, 4, s.NonNull)
	assert.Equal(t, 1, s.Missing)
	assert.Equal(t, 20.0, s.MissingPct())
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.5, s.Median)
	assert.InDelta(t, 1.2910, s.Std, 1e-4)
	assert.Equal(t, 1.75, s.Q25)
	assert.Equal(t, 3.25, s.Q75)
	assert.Zero(t, s.Outliers)
}

func TestOutliers(t *testing.T) {
	c := table.FloatColumn("v", 10, 11, 10, 12, 11, 10, 11, 12, 10, 500)
	s := Column(c)
	assert.Equal(t, 1, s.Outliers)
	assert.Greater(t, s.MaxAbsZ, OutlierThreshold)
}

func TestTopValues(t *testing.T) {
	c := table.StringColumn("c", "b", "a", "b", "c", "a", "b", "")
	s := Column(c)
	assert.Equal(t, 3, s.Unique)
	require.Len(t, s.TopValues, 3)
	assert.Equal(t, CategoryCount{Value: "b", Count: 3}, s.TopValues[0])
	assert.Equal(t, CategoryCount{Value: "a", Count: 2}, s.TopValues[1])
}

func TestBooleanTopValues(t *testing.T) {
	s := Column(table.BoolColumn("b", true, false, true))
	assert.Equal(t, table.KindBoolean, s.Kind)
	assert.Equal(t, "true", s.TopValues[0].Value)
}

func TestDateTimeRange(t *testing.T) {
	d1 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c := table.NewColumn("d", table.DateTime, []table.Value{table.TimeValue(d2), table.Null(), table.TimeValue(d1)})
	s := Column(c)
	assert.Equal(t, d1, s.Earliest)
	assert.Equal(t, d2, s.Latest)
	assert.Equal(t, 2, s.Unique)
}

func TestTableKeepsOrder(t *testing.T) {
	tb := table.MustNew("t", table.IntColumn("b", 1), table.IntColumn("a", 2))
	sums := Table(tb)
	require.Len(t, sums, 2)
	assert.Equal(t, "b", sums[0].Name)
	assert.Equal(t, "a", sums[1].Name)
}
