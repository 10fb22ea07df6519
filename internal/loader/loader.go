// Package loader reads tabular files into tables, inferring storage types the
// way a dataframe reader does.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tabloom/internal/table"
)

// ErrUnsupportedFormat indicates no registered reader accepts the file.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// ParseError reports malformed input at a given line (1-based; 0 if unknown).
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Options controls reading and type inference.
type Options struct {
	// Delimiter for CSV. If 0, .tsv uses tab and other files are sniffed among ',', ';', '\t'.
	Delimiter rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Sheet selects an XLSX sheet by name; it takes precedence over SheetIndex.
	Sheet string
	// SheetIndex selects an XLSX sheet, 1-based. 0 means the first sheet.
	SheetIndex int
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// Reader loads one family of file formats.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) (*table.Table, error)
}

var registry []Reader

// Register adds a reader. Later registrations are consulted after earlier ones.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
	Register(jsonReader{})
}

// CanRead reports whether some registered reader accepts path.
func CanRead(path string) bool {
	_, err := readerFor(path)
	return err == nil
}

func readerFor(path string) (Reader, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load reads path with the first reader that accepts it.
func Load(path string, opt Options) (*table.Table, error) {
	r, err := readerFor(path)
	if err != nil {
		return nil, err
	}
	return r.Read(path, opt)
}

func hasExt(path string, exts ...string) bool {
	e := strings.ToLower(filepath.Ext(path))
	for _, x := range exts {
		if e == x {
			return true
		}
	}
	return false
}

func tableName(path string) string { return filepath.Base(path) }
