// Package describe computes per-column descriptive statistics.
package describe

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/tabloom/internal/table"
)

const (
	// OutlierThreshold is the robust |z| above which a value counts as an outlier.
	OutlierThreshold = 3.5
	// minOutlierSample is the fewest values for which outliers are reported.
	minOutlierSample = 8
	maxTopValues     = 8
)

// Summary captures the statistics of one column. Fields irrelevant to the
// column's kind are zero.
type Summary struct {
	Name    string            `json:"name" yaml:"name"`
	Storage table.StorageType `json:"storage" yaml:"storage"`
	Kind    table.Kind        `json:"kind" yaml:"kind"`
	NonNull int               `json:"non_null" yaml:"non_null"`
	Missing int               `json:"missing" yaml:"missing"`
	Unique  int               `json:"unique" yaml:"unique"`

	// Numeric
	Min      float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max      float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean     float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std      float64 `json:"std,omitempty" yaml:"std,omitempty"`
	Median   float64 `json:"median,omitempty" yaml:"median,omitempty"`
	Q25      float64 `json:"q25,omitempty" yaml:"q25,omitempty"`
	Q75      float64 `json:"q75,omitempty" yaml:"q75,omitempty"`
	Outliers int     `json:"outliers,omitempty" yaml:"outliers,omitempty"`
	MaxAbsZ  float64 `json:"max_abs_z,omitempty" yaml:"max_abs_z,omitempty"`

	// Categorical and boolean
	TopValues []CategoryCount `json:"top_values,omitempty" yaml:"top_values,omitempty"`

	// DateTime
	Earliest time.Time `json:"earliest,omitempty" yaml:"earliest,omitempty"`
	Latest   time.Time `json:"latest,omitempty" yaml:"latest,omitempty"`
}

// CategoryCount is one level and its frequency.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// MissingPct is the share of missing cells in percent.
func (s Summary) MissingPct() float64 {
	total := s.NonNull + s.Missing
	if total == 0 {
		return 0
	}
	return float64(s.Missing) * 100 / float64(total)
}

// Table summarizes every column in order.
func Table(t *table.Table) []Summary {
	out := make([]Summary, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = Column(c)
	}
	return out
}

// Column summarizes a single column.
func Column(c *table.Column) Summary {
	s := Summary{Name: c.Name, Storage: c.Storage, Kind: c.Kind}
	counts := map[string]int{}
	var nums []float64
	for i, v := range c.Values {
		if v.Missing {
			s.Missing++
			continue
		}
		s.NonNull++
		counts[c.Text(i)]++
		switch c.Kind {
		case table.KindNumeric:
			nums = append(nums, v.Num)
		case table.KindDateTime:
			if s.Earliest.IsZero() || v.Time.Before(s.Earliest) {
				s.Earliest = v.Time
			}
			if v.Time.After(s.Latest) {
				s.Latest = v.Time
			}
		}
	}
	s.Unique = len(counts)

	switch c.Kind {
	case table.KindNumeric:
		numeric(&s, nums)
	case table.KindCategorical, table.KindBoolean:
		s.TopValues = topValues(counts, maxTopValues)
	}
	return s
}

func numeric(s *Summary, vals []float64) {
	if len(vals) == 0 {
		return
	}
	s.Min, _ = stats.Min(vals)
	s.Max, _ = stats.Max(vals)
	s.Mean, _ = stats.Mean(vals)
	if len(vals) > 1 {
		s.Std, _ = stats.StandardDeviationSample(vals)
	}
	s.Median, _ = stats.Median(vals)

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Q75 = quantile(sorted, 0.75)

	if len(vals) < minOutlierSample {
		return
	}
	mad, err := stats.MedianAbsoluteDeviation(vals)
	if err != nil || mad == 0 {
		return
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - s.Median) / mad)
		if az > OutlierThreshold {
			s.Outliers++
		}
		if az > s.MaxAbsZ {
			s.MaxAbsZ = az
		}
	}
}

// quantile interpolates linearly between closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo, hi := int(math.Floor(pos)), int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// topValues orders by count descending, then value ascending.
func topValues(counts map[string]int, k int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}
