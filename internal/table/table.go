package table

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrRaggedColumns indicates columns of different lengths.
	ErrRaggedColumns = errors.New("columns have different lengths")
	// ErrDuplicateColumn indicates two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrUnknownColumn indicates a lookup for a column that does not exist.
	ErrUnknownColumn = errors.New("unknown column")
)

// Column is a named, ordered sequence of values of one storage type.
type Column struct {
	Name    string
	Storage StorageType
	Kind    Kind
	Values  []Value
}

// NewColumn builds a column whose kind is derived from its storage type.
func NewColumn(name string, st StorageType, values []Value) *Column {
	return &Column{Name: name, Storage: st, Kind: Classify(st), Values: values}
}

// IntColumn is a convenience constructor for int64 columns.
func IntColumn(name string, vals ...int64) *Column {
	vs := make([]Value, len(vals))
	for i, v := range vals {
		vs[i] = Value{Num: float64(v)}
	}
	return NewColumn(name, Int64, vs)
}

// FloatColumn is a convenience constructor for float64 columns. NaN entries are missing.
func FloatColumn(name string, vals ...float64) *Column {
	vs := make([]Value, len(vals))
	for i, v := range vals {
		vs[i] = Num(v)
	}
	return NewColumn(name, Float64, vs)
}

// StringColumn is a convenience constructor for object (free text) columns.
// Empty strings are missing.
func StringColumn(name string, vals ...string) *Column {
	vs := make([]Value, len(vals))
	for i, v := range vals {
		vs[i] = Str(v)
	}
	return NewColumn(name, Object, vs)
}

// BoolColumn is a convenience constructor for bool columns.
func BoolColumn(name string, vals ...bool) *Column {
	vs := make([]Value, len(vals))
	for i, v := range vals {
		vs[i] = BoolValue(v)
	}
	return NewColumn(name, Bool, vs)
}

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.Values) }

// NonMissing returns the count of non-missing values.
func (c *Column) NonMissing() int {
	n := 0
	for _, v := range c.Values {
		if !v.Missing {
			n++
		}
	}
	return n
}

// Text renders row i as text.
func (c *Column) Text(i int) string { return FormatValue(c.Storage, c.Values[i]) }

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	vs := make([]Value, len(c.Values))
	copy(vs, c.Values)
	return &Column{Name: c.Name, Storage: c.Storage, Kind: c.Kind, Values: vs}
}

// Table is an ordered collection of equally long columns.
type Table struct {
	ID      uuid.UUID
	Name    string
	Columns []*Column
	index   map[string]int
}

// New validates the columns and returns a table with a fresh identity.
func New(name string, cols ...*Column) (*Table, error) {
	t := &Table{ID: uuid.New(), Name: name, Columns: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if i > 0 && c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("%w: %q has %d rows, %q has %d", ErrRaggedColumns, c.Name, c.Len(), cols[0].Name, cols[0].Len())
		}
		t.index[c.Name] = i
	}
	return t, nil
}

// MustNew is like New but panics on invalid input. Intended for fixtures.
func MustNew(name string, cols ...*Column) *Table {
	t, err := New(name, cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Rows returns the shared row count.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.Columns) }

// Names returns column names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the named column or -1. It never writes to
// t, so a table may be read from several goroutines. Tables not built by New
// fall back to a linear scan.
func (t *Table) Index(name string) int {
	if t.index == nil {
		for i, c := range t.Columns {
			if c.Name == name {
				return i
			}
		}
		return -1
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, error) {
	i := t.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return t.Columns[i], nil
}

// Clone returns a deep copy with a new identity.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Clone()
	}
	out, _ := New(t.Name, cols...)
	return out
}

// Select returns a table holding the named columns in the given order. Column
// data is shared with t; callers must not mutate it.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(t.Name, cols...)
}

// Fingerprint hashes names, storage types, kinds and cell text. Two tables with
// equal fingerprints render identically.
func (t *Table) Fingerprint() string {
	h := sha256.New()
	for _, c := range t.Columns {
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1e", c.Name, c.Storage, c.Kind)
		for i := range c.Values {
			if c.Values[i].Missing {
				h.Write([]byte{0})
			} else {
				h.Write([]byte(c.Text(i)))
			}
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1d})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// String summarizes the schema, e.g. "people(3 rows: age int64/numeric, ...)".
func (t *Table) String() string {
	parts := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		parts[i] = fmt.Sprintf("%s %s/%s", c.Name, c.Storage, c.Kind)
	}
	return fmt.Sprintf("%s(%d rows: %s)", t.Name, t.Rows(), strings.Join(parts, ", "))
}
