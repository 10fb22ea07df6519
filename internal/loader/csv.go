package loader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/tabloom/internal/table"
)

type csvReader struct{}

func (csvReader) CanRead(path string) bool { return hasExt(path, ".csv", ".tsv", ".txt") }

func (csvReader) Read(path string, opt Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path, br)
	}
	return ReadCSV(tableName(path), br, delim, opt)
}

// ReadCSV parses delimited text from r. The first record is the header.
func ReadCSV(name string, r io.Reader, delim rune, opt Options) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.New(name)
	}
	if err != nil {
		return nil, &ParseError{Path: name, Line: 1, Err: err}
	}
	var rows [][]string
	for {
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, &ParseError{Path: name, Line: line, Err: err}
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		rows = append(rows, rec)
	}
	return FromRecords(name, header, rows, opt)
}

// sniffDelimiter uses the extension for .tsv and otherwise counts candidate
// separators on the first line.
func sniffDelimiter(path string, br *bufio.Reader) rune {
	if hasExt(path, ".tsv") {
		return '\t'
	}
	peek, _ := br.Peek(4096)
	line := string(peek)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestN := ',', 0
	for _, c := range []rune{',', ';', '\t'} {
		if n := strings.Count(line, string(c)); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}
