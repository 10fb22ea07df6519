package loader

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tabloom/internal/table"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(path string) bool { return hasExt(path, ".xlsx", ".xlsm") }

// Read loads one sheet: opt.Sheet by name, else opt.SheetIndex (1-based), else
// the first sheet. The first row is the header.
func (xlsxReader) Read(path string, opt Options) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("workbook has no sheets")}
	}
	sheet := opt.Sheet
	if sheet == "" {
		idx := opt.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		if idx > len(sheets) {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("sheet index %d out of range (1..%d)", idx, len(sheets))}
		}
		sheet = sheets[idx-1]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	name := tableName(path)
	if len(rows) == 0 {
		return table.New(name)
	}
	header, data := rows[0], rows[1:]
	// Trailing empty header cells are dropped by excelize; widen to the data.
	for _, r := range data {
		for len(header) < len(r) {
			header = append(header, "")
		}
	}
	return FromRecords(name, header, data, opt)
}
