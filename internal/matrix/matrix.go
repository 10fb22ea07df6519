// Package matrix builds square column-by-column association matrices.
package matrix

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/tabloom/internal/assoc"
	"github.com/KaramelBytes/tabloom/internal/logging"
	"github.com/KaramelBytes/tabloom/internal/table"
)

// ErrInsufficientColumns is reported when fewer than two columns are available.
var ErrInsufficientColumns = errors.New("insufficient columns for an association matrix")

// Status describes whether a matrix holds values.
type Status int

const (
	StatusOK Status = iota
	StatusInsufficientColumns
	StatusInvalidColumns
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInsufficientColumns:
		return "insufficient_columns"
	case StatusInvalidColumns:
		return "invalid_columns"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Matrix is an association matrix for one method. values[i][j] is
// assoc.Score(labels[i], labels[j]); NaN marks an undefined cell.
type Matrix struct {
	Method assoc.Method
	Status Status
	labels []string
	values [][]float64
	err    error
}

// Option configures Build.
type Option func(*builder)

type builder struct {
	columns []string
	log     *zap.Logger
}

// WithColumns restricts and orders the matrix axes.
func WithColumns(names ...string) Option {
	return func(b *builder) { b.columns = names }
}

// WithLogger logs a summary of each build at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(b *builder) { b.log = logging.OrNop(l) }
}

// Build scores every ordered column pair of t under m. Pairs are evaluated
// independently, so asymmetric methods fill both triangles.
func Build(t *table.Table, m assoc.Method, opts ...Option) *Matrix {
	b := builder{log: zap.NewNop()}
	for _, o := range opts {
		o(&b)
	}
	src := t
	if b.columns != nil {
		sel, err := t.Select(b.columns...)
		if err != nil {
			return &Matrix{Method: m, Status: StatusInvalidColumns, err: err}
		}
		src = sel
	}
	if src.Width() < 2 {
		return &Matrix{Method: m, Status: StatusInsufficientColumns, labels: src.Names(), err: ErrInsufficientColumns}
	}

	labels := src.Names()
	n := len(labels)
	values := make([][]float64, n)
	undefined := 0
	for i := range labels {
		values[i] = make([]float64, n)
		for j := range labels {
			if i == j {
				values[i][j] = 1
				continue
			}
			v := assoc.Score(src, labels[i], labels[j], m)
			if math.IsNaN(v) {
				undefined++
			}
			values[i][j] = v
		}
	}
	b.log.Debug("association matrix built",
		zap.String("table", t.Name),
		zap.String("method", string(m)),
		zap.Int("columns", n),
		zap.Int("undefined", undefined))
	return &Matrix{Method: m, Status: StatusOK, labels: labels, values: values}
}

// Err returns ErrInsufficientColumns or the column selection error; nil when Status is StatusOK.
func (m *Matrix) Err() error { return m.err }

// Labels returns the axis labels.
func (m *Matrix) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// Size is the number of rows (and columns); zero unless Status is StatusOK.
func (m *Matrix) Size() int { return len(m.values) }

// Values returns a copy of the cells.
func (m *Matrix) Values() [][]float64 {
	out := make([][]float64, len(m.values))
	for i, row := range m.values {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// At returns cell (i, j).
func (m *Matrix) At(i, j int) float64 { return m.values[i][j] }

// Get returns the score of a against b.
func (m *Matrix) Get(a, b string) (float64, bool) {
	i, j := indexOf(m.labels, a), indexOf(m.labels, b)
	if i < 0 || j < 0 || m.Status != StatusOK {
		return math.NaN(), false
	}
	return m.values[i][j], true
}

func indexOf(labels []string, s string) int {
	for i, l := range labels {
		if l == s {
			return i
		}
	}
	return -1
}

// Dense returns the cells as a gonum matrix, or nil when Status is not StatusOK.
func (m *Matrix) Dense() *mat.Dense {
	n := m.Size()
	if n == 0 {
		return nil
	}
	flat := make([]float64, 0, n*n)
	for _, row := range m.values {
		flat = append(flat, row...)
	}
	return mat.NewDense(n, n, flat)
}

// Cell formats cell (i, j) with two decimals.
func (m *Matrix) Cell(i, j int) string { return FormatScore(m.values[i][j]) }

// FormatScore renders a score with two decimals; undefined scores render as "NaN".
func FormatScore(v float64) string { return fmt.Sprintf("%.2f", v) }

// Symmetric reports whether the method guarantees values[i][j] == values[j][i].
func (m *Matrix) Symmetric() bool { return m.Method.Symmetric() }

// WriteCSV writes a header row of labels followed by one labelled row per
// column. Undefined cells are left empty.
func (m *Matrix) WriteCSV(w io.Writer) error {
	if m.Status != StatusOK {
		return m.err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, m.labels...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, l := range m.labels {
		rec := make([]string, 0, len(m.labels)+1)
		rec = append(rec, l)
		for j := range m.labels {
			if math.IsNaN(m.values[i][j]) {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, m.Cell(i, j))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %q: %w", l, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Pair is one off-diagonal matrix entry.
type Pair struct {
	A, B  string
	Value float64
}

// TopPairs returns up to k defined off-diagonal entries ordered by |value|
// descending. Symmetric methods report each unordered pair once.
func (m *Matrix) TopPairs(k int) []Pair {
	var pairs []Pair
	sym := m.Symmetric()
	for i := range m.values {
		for j := range m.values[i] {
			if i == j || (sym && j < i) || math.IsNaN(m.values[i][j]) {
				continue
			}
			pairs = append(pairs, Pair{A: m.labels[i], B: m.labels[j], Value: m.values[i][j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].Value), math.Abs(pairs[j].Value)
		if ai == aj {
			return pairs[i].A+"\x00"+pairs[i].B < pairs[j].A+"\x00"+pairs[j].B
		}
		return ai > aj
	})
	if k >= 0 && len(pairs) > k {
		pairs = pairs[:k]
	}
	return pairs
}
