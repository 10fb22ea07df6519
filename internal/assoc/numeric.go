package assoc

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/KaramelBytes/tabloom/internal/table"
)

func pearson(a, b *table.Column) (Detail, error) {
	x, y := numericPairs(a, b)
	return pearsonOf(x, y)
}

func pearsonOf(x, y []float64) (Detail, error) {
	n := len(x)
	if n < 2 {
		return Detail{}, degenerate("%d complete pairs", n)
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return Detail{}, degenerate("zero variance")
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return Detail{}, degenerate("correlation is NaN")
	}
	r = clamp(r, -1, 1)
	d := Detail{Value: r, Statistic: math.NaN(), PValue: math.NaN(), N: n}
	if n > 2 {
		df := float64(n - 2)
		if math.Abs(r) == 1 {
			d.Statistic = math.Copysign(math.Inf(1), r)
			d.PValue = 0
		} else {
			tStat := r * math.Sqrt(df/(1-r*r))
			d.Statistic = tStat
			d.PValue = 2 * (1 - distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(math.Abs(tStat)))
		}
	}
	return d, nil
}

func spearman(a, b *table.Column) (Detail, error) {
	x, y := numericPairs(a, b)
	return pearsonOf(ranks(x), ranks(y))
}

// ranks assigns 1-based ranks, averaging ties.
func ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return v[idx[i]] < v[idx[j]] })
	out := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

// kendall computes tau-b with a normal-approximation p-value. Pairs are
// counted with Knight's merge-sort method in O(n log n).
func kendall(a, b *table.Column) (Detail, error) {
	x, y := numericPairs(a, b)
	n := len(x)
	if n < 2 {
		return Detail{}, degenerate("%d complete pairs", n)
	}
	c := tauCounts(x, y)
	n0 := float64(n) * float64(n-1) / 2
	denom := math.Sqrt((n0 - c.tiesX) * (n0 - c.tiesY))
	if denom == 0 {
		return Detail{}, degenerate("all pairs tied")
	}
	tau := (n0 - c.tiesX - c.tiesY + c.tiesXY - 2*c.discordant) / denom
	fn := float64(n)
	z := 3 * tau * math.Sqrt(fn*(fn-1)) / math.Sqrt(2*(2*fn+5))
	return Detail{
		Value:     tau,
		Statistic: z,
		PValue:    2 * (1 - distuv.UnitNormal.CDF(math.Abs(z))),
		N:         n,
	}, nil
}

// pairCounts holds pair totals for tau-b. tiesX and tiesY include pairs tied
// on both axes; tiesXY counts those joint ties alone.
type pairCounts struct {
	tiesX, tiesY, tiesXY, discordant float64
}

func tauCounts(x, y []float64) pairCounts {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		if x[idx[i]] != x[idx[j]] {
			return x[idx[i]] < x[idx[j]]
		}
		return y[idx[i]] < y[idx[j]]
	})

	var c pairCounts
	for i := 0; i < n; {
		j := i
		for j+1 < n && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		c.tiesX += tiedPairs(j - i + 1)
		for k := i; k <= j; {
			l := k
			for l+1 <= j && y[idx[l+1]] == y[idx[k]] {
				l++
			}
			c.tiesXY += tiedPairs(l - k + 1)
			k = l + 1
		}
		i = j + 1
	}

	ys := make([]float64, n)
	for i, k := range idx {
		ys[i] = y[k]
	}
	c.discordant = float64(mergeInversions(ys, make([]float64, n)))

	for i := 0; i < n; {
		j := i
		for j+1 < n && ys[j+1] == ys[i] {
			j++
		}
		c.tiesY += tiedPairs(j - i + 1)
		i = j + 1
	}
	return c
}

func tiedPairs(t int) float64 { return float64(t) * float64(t-1) / 2 }

// mergeInversions sorts v ascending and returns the number of pairs i < j
// with v[i] > v[j]. tmp must be at least as long as v.
func mergeInversions(v, tmp []float64) int64 {
	if len(v) < 2 {
		return 0
	}
	mid := len(v) / 2
	inv := mergeInversions(v[:mid], tmp[:mid]) + mergeInversions(v[mid:], tmp[mid:])
	i, j, k := 0, mid, 0
	for i < mid && j < len(v) {
		if v[j] < v[i] {
			tmp[k] = v[j]
			inv += int64(mid - i)
			j++
		} else {
			tmp[k] = v[i]
			i++
		}
		k++
	}
	k += copy(tmp[k:], v[i:mid])
	copy(tmp[k:], v[j:])
	copy(v, tmp[:len(v)])
	return inv
}
