package assoc

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/tabloom/internal/table"
)

// Detail is a full evaluation result. Statistic and PValue are NaN when the
// measure has no accompanying test.
type Detail struct {
	Method    Method  `json:"method" yaml:"method"`
	Value     float64 `json:"value" yaml:"value"`
	Statistic float64 `json:"statistic" yaml:"statistic"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
	N         int     `json:"n" yaml:"n"`
}

// Score returns the association of colA with colB under m, or NaN when the
// result is undefined for any reason. It never panics.
func Score(t *table.Table, colA, colB string, m Method) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			v = math.NaN()
		}
	}()
	d, err := Evaluate(t, colA, colB, m)
	if err != nil {
		return math.NaN()
	}
	return d.Value
}

// Evaluate scores colA against colB. For theils_u the result is U(colA|colB),
// the share of colA's uncertainty explained by colB.
func Evaluate(t *table.Table, colA, colB string, m Method) (Detail, error) {
	wrap := func(err error) error { return &PairError{A: colA, B: colB, Method: m, Err: err} }

	ms, ok := registry[m]
	if !ok {
		return nanDetail(m), wrap(fmt.Errorf("%w: %q", ErrUnknownMethod, string(m)))
	}
	a, err := t.Column(colA)
	if err != nil {
		return nanDetail(m), wrap(err)
	}
	b, err := t.Column(colB)
	if err != nil {
		return nanDetail(m), wrap(err)
	}
	if colA == colB {
		return Detail{Method: m, Value: 1, Statistic: math.NaN(), PValue: math.NaN(), N: a.NonMissing()}, nil
	}
	if !ms.compatible(a, b) {
		return nanDetail(m), wrap(fmt.Errorf("%w: %s/%s", ErrIncompatibleKinds, a.Kind, b.Kind))
	}
	d, err := ms.score(a, b)
	if err != nil {
		return nanDetail(m), wrap(err)
	}
	d.Method = m
	if ms.signed {
		d.Value = clamp(d.Value, -1, 1)
	} else {
		d.Value = clamp(d.Value, 0, 1)
	}
	return d, nil
}

func nanDetail(m Method) Detail {
	return Detail{Method: m, Value: math.NaN(), Statistic: math.NaN(), PValue: math.NaN()}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(lo, math.Min(hi, v))
}

// numericPairs returns the rows where both columns are present.
func numericPairs(a, b *table.Column) (x, y []float64) {
	for i := range a.Values {
		if a.Values[i].Missing || b.Values[i].Missing {
			continue
		}
		x = append(x, a.Values[i].Num)
		y = append(y, b.Values[i].Num)
	}
	return x, y
}

// levelPairs returns the text levels of the rows where both columns are present.
func levelPairs(a, b *table.Column) (x, y []string) {
	for i := range a.Values {
		if a.Values[i].Missing || b.Values[i].Missing {
			continue
		}
		x = append(x, a.Text(i))
		y = append(y, b.Text(i))
	}
	return x, y
}
