package assoc

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/KaramelBytes/tabloom/internal/table"
)

// contingency is a cross-tabulation of two sets of levels. Rows follow the
// first column, sorted by level text.
type contingency struct {
	rows, cols []string
	counts     [][]float64
	rowSum     []float64
	colSum     []float64
	n          float64
}

func crossTab(x, y []string) *contingency {
	rows, rowIdx := levels(x)
	cols, colIdx := levels(y)
	ct := &contingency{
		rows:   rows,
		cols:   cols,
		counts: make([][]float64, len(rows)),
		rowSum: make([]float64, len(rows)),
		colSum: make([]float64, len(cols)),
		n:      float64(len(x)),
	}
	for i := range ct.counts {
		ct.counts[i] = make([]float64, len(cols))
	}
	for k := range x {
		i, j := rowIdx[x[k]], colIdx[y[k]]
		ct.counts[i][j]++
		ct.rowSum[i]++
		ct.colSum[j]++
	}
	return ct
}

func levels(v []string) ([]string, map[string]int) {
	idx := map[string]int{}
	var out []string
	for _, s := range v {
		if _, ok := idx[s]; !ok {
			idx[s] = 0
			out = append(out, s)
		}
	}
	sort.Strings(out)
	for i, s := range out {
		idx[s] = i
	}
	return out, idx
}

// chiSquare returns Pearson's chi-squared statistic and its p-value.
func (ct *contingency) chiSquare() (float64, float64) {
	obs := make([]float64, 0, len(ct.rows)*len(ct.cols))
	exp := make([]float64, 0, cap(obs))
	for i := range ct.rows {
		for j := range ct.cols {
			obs = append(obs, ct.counts[i][j])
			exp = append(exp, ct.rowSum[i]*ct.colSum[j]/ct.n)
		}
	}
	chi2 := stat.ChiSquare(obs, exp)
	df := float64((len(ct.rows) - 1) * (len(ct.cols) - 1))
	return chi2, 1 - distuv.ChiSquared{K: df}.CDF(chi2)
}

func cramersV(a, b *table.Column) (Detail, error) {
	x, y := levelPairs(a, b)
	if len(x) == 0 {
		return Detail{}, degenerate("no complete pairs")
	}
	ct := crossTab(x, y)
	k := min(len(ct.rows), len(ct.cols))
	if k < 2 {
		return Detail{}, degenerate("%dx%d contingency table", len(ct.rows), len(ct.cols))
	}
	chi2, p := ct.chiSquare()
	v := math.Sqrt(chi2 / (ct.n * float64(k-1)))
	return Detail{Value: v, Statistic: chi2, PValue: p, N: len(x)}, nil
}

// theilsU returns U(a|b) = (H(a) - H(a|b)) / H(a), with U = 1 when H(a) = 0.
func theilsU(a, b *table.Column) (Detail, error) {
	x, y := levelPairs(a, b)
	if len(x) == 0 {
		return Detail{}, degenerate("no complete pairs")
	}
	ct := crossTab(x, y)
	hA := stat.Entropy(normalize(ct.rowSum, ct.n))
	d := Detail{Statistic: math.NaN(), PValue: math.NaN(), N: len(x)}
	if hA == 0 {
		d.Value = 1
		return d, nil
	}
	var hAgivenB float64
	col := make([]float64, len(ct.rows))
	for j := range ct.cols {
		for i := range ct.rows {
			col[i] = ct.counts[i][j]
		}
		hAgivenB += ct.colSum[j] / ct.n * stat.Entropy(normalize(col, ct.colSum[j]))
	}
	d.Value = (hA - hAgivenB) / hA
	d.Statistic = hAgivenB
	return d, nil
}

func normalize(counts []float64, total float64) []float64 {
	p := make([]float64, len(counts))
	for i, c := range counts {
		p[i] = c / total
	}
	return p
}

// phi is the 2x2 correlation. Levels are ordered by text so that for booleans
// "true" pairs with "true" and positive phi means positive association.
func phi(a, b *table.Column) (Detail, error) {
	x, y := levelPairs(a, b)
	ct := crossTab(x, y)
	if len(ct.rows) != 2 || len(ct.cols) != 2 {
		return Detail{}, degenerate("%dx%d contingency table", len(ct.rows), len(ct.cols))
	}
	n11, n12 := ct.counts[0][0], ct.counts[0][1]
	n21, n22 := ct.counts[1][0], ct.counts[1][1]
	denom := math.Sqrt((n11 + n12) * (n21 + n22) * (n11 + n21) * (n12 + n22))
	if denom == 0 {
		return Detail{}, degenerate("empty margin")
	}
	v := (n11*n22 - n12*n21) / denom
	chi2 := ct.n * v * v
	return Detail{
		Value:     v,
		Statistic: chi2,
		PValue:    1 - distuv.ChiSquared{K: 1}.CDF(chi2),
		N:         len(x),
	}, nil
}

// correlationRatio is eta: sqrt(SS_between / SS_total) of the numeric column
// grouped by the nominal one. Either argument order is accepted.
func correlationRatio(a, b *table.Column) (Detail, error) {
	cat, num := a, b
	if isNumeric(a) {
		cat, num = b, a
	}
	groups := map[string][]float64{}
	var all []float64
	for i := range cat.Values {
		if cat.Values[i].Missing || num.Values[i].Missing {
			continue
		}
		v := num.Values[i].Num
		groups[cat.Text(i)] = append(groups[cat.Text(i)], v)
		all = append(all, v)
	}
	n := len(all)
	if n == 0 {
		return Detail{}, degenerate("no complete pairs")
	}
	d := Detail{Statistic: math.NaN(), PValue: math.NaN(), N: n}
	k := len(groups)
	if k < 2 {
		return d, nil
	}
	mean := stat.Mean(all, nil)
	var ssTotal, ssBetween float64
	for _, v := range all {
		ssTotal += (v - mean) * (v - mean)
	}
	for _, g := range groups {
		gm := stat.Mean(g, nil)
		ssBetween += float64(len(g)) * (gm - mean) * (gm - mean)
	}
	if ssTotal == 0 {
		return d, nil
	}
	d.Value = math.Sqrt(ssBetween / ssTotal)
	ssWithin := ssTotal - ssBetween
	if n > k && ssWithin > 0 {
		f := (ssBetween / float64(k-1)) / (ssWithin / float64(n-k))
		d.Statistic = f
		d.PValue = 1 - distuv.F{D1: float64(k - 1), D2: float64(n - k)}.CDF(f)
	}
	return d, nil
}
