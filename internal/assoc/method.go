// Package assoc scores the association between two table columns using the
// measure that fits their semantic kinds.
package assoc

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabloom/internal/table"
)

// Method names an association measure.
type Method string

const (
	Pearson          Method = "pearson"
	Spearman         Method = "spearman"
	Kendall          Method = "kendall"
	CramersV         Method = "cramers_v"
	TheilsU          Method = "theils_u"
	Phi              Method = "phi"
	CorrelationRatio Method = "correlation_ratio"
)

// measure pairs a kind predicate with its scorer. Both are mandatory.
type measure struct {
	signed     bool
	symmetric  bool
	compatible func(a, b *table.Column) bool
	score      func(a, b *table.Column) (Detail, error)
}

var (
	order    []Method
	registry = map[Method]measure{}
)

func register(m Method, signed, symmetric bool, compatible func(a, b *table.Column) bool, score func(a, b *table.Column) (Detail, error)) {
	if compatible == nil || score == nil {
		panic(fmt.Sprintf("assoc: method %s registered without predicate or scorer", m))
	}
	if _, dup := registry[m]; dup {
		panic(fmt.Sprintf("assoc: method %s registered twice", m))
	}
	registry[m] = measure{signed: signed, symmetric: symmetric, compatible: compatible, score: score}
	order = append(order, m)
}

func init() {
	register(Pearson, true, true, numericPair, pearson)
	register(Spearman, true, true, numericPair, spearman)
	register(Kendall, true, true, numericPair, kendall)
	register(CramersV, false, true, nominalPair, cramersV)
	register(TheilsU, false, false, nominalPair, theilsU)
	register(Phi, true, true, binaryPair, phi)
	register(CorrelationRatio, false, true, mixedPair, correlationRatio)
}

// Methods lists every supported method in a stable order.
func Methods() []Method {
	out := make([]Method, len(order))
	copy(out, order)
	return out
}

// ParseMethod resolves a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
	return m, nil
}

func (m Method) String() string { return string(m) }

// Signed reports whether scores range over [-1,1] rather than [0,1].
func (m Method) Signed() bool { return registry[m].signed }

// Symmetric reports whether score(a,b) == score(b,a) for every pair.
func (m Method) Symmetric() bool { return registry[m].symmetric }

// Compatible reports whether m applies to the kinds of a and b.
func (m Method) Compatible(a, b *table.Column) bool {
	ms, ok := registry[m]
	return ok && ms.compatible(a, b)
}

func isNumeric(c *table.Column) bool { return c.Kind == table.KindNumeric }

// Booleans are two-level categoricals for the nominal measures.
func isNominal(c *table.Column) bool {
	return c.Kind == table.KindCategorical || c.Kind == table.KindBoolean
}

func numericPair(a, b *table.Column) bool { return isNumeric(a) && isNumeric(b) }

func nominalPair(a, b *table.Column) bool { return isNominal(a) && isNominal(b) }

func binaryPair(a, b *table.Column) bool {
	return nominalPair(a, b) && distinct(a) == 2 && distinct(b) == 2
}

func mixedPair(a, b *table.Column) bool {
	return (isNominal(a) && isNumeric(b)) || (isNumeric(a) && isNominal(b))
}

func distinct(c *table.Column) int {
	seen := map[string]struct{}{}
	for i, v := range c.Values {
		if !v.Missing {
			seen[c.Text(i)] = struct{}{}
		}
	}
	return len(seen)
}
