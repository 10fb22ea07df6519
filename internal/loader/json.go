package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/KaramelBytes/tabloom/internal/table"
)

type jsonReader struct{}

func (jsonReader) CanRead(path string) bool { return hasExt(path, ".json") }

func (jsonReader) Read(path string, opt Options) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	return ReadJSON(tableName(path), data, opt)
}

// ReadJSON accepts either an array of records, [{"a": 1, "b": "x"}, ...], or
// a column/row document, {"columns": ["a", "b"], "rows": [[1, "x"], ...]}.
// Column order follows first appearance.
func ReadJSON(name string, data []byte, opt Options) (*table.Table, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return table.New(name)
	}
	var (
		names []string
		rows  [][]any
		err   error
	)
	switch data[0] {
	case '[':
		names, rows, err = decodeRecords(data)
	case '{':
		names, rows, err = decodeColumnar(data)
	default:
		err = errors.New("expected a JSON array or object")
	}
	if err != nil {
		return nil, &ParseError{Path: name, Err: err}
	}
	if opt.MaxRows > 0 && len(rows) > opt.MaxRows {
		rows = rows[:opt.MaxRows]
	}
	cols := make([]*table.Column, len(names))
	for j, n := range names {
		cells := make([]any, len(rows))
		for i, r := range rows {
			if j < len(r) {
				cells[i] = r[j]
			}
		}
		cols[j] = jsonColumn(n, cells)
	}
	return table.New(name, cols...)
}

func decodeRecords(data []byte) ([]string, [][]any, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	var names []string
	index := map[string]int{}
	rows := make([][]any, 0, len(raw))
	for i, msg := range raw {
		keys, vals, err := orderedObject(msg)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
		row := make([]any, len(names))
		for k, key := range keys {
			j, ok := index[key]
			if !ok {
				j = len(names)
				index[key] = j
				names = append(names, key)
				row = append(row, nil)
			}
			row[j] = vals[k]
		}
		rows = append(rows, row)
	}
	return names, rows, nil
}

// orderedObject decodes a flat JSON object preserving key order.
func orderedObject(msg json.RawMessage) ([]string, []any, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("expected an object")
	}
	var keys []string
	var vals []any
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", key, err)
		}
		keys = append(keys, key)
		vals = append(vals, v)
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	return keys, vals, nil
}

func decodeColumnar(data []byte) ([]string, [][]any, error) {
	var doc struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, err
	}
	if len(doc.Columns) == 0 {
		return nil, nil, errors.New(`object form needs a "columns" array`)
	}
	for i, r := range doc.Rows {
		if len(r) > len(doc.Columns) {
			return nil, nil, fmt.Errorf("row %d has %d values for %d columns", i, len(r), len(doc.Columns))
		}
	}
	return doc.Columns, doc.Rows, nil
}

// jsonColumn maps native JSON types: integers to int64, other numbers to
// float64, booleans to bool and anything else to object text.
func jsonColumn(name string, cells []any) *table.Column {
	allInt, allNum, allBool := true, true, true
	present := 0
	for _, c := range cells {
		switch v := c.(type) {
		case nil:
			continue
		case json.Number:
			if _, err := strconv.ParseInt(v.String(), 10, 64); err != nil {
				allInt = false
			}
			allBool = false
		case bool:
			allInt, allNum = false, false
		default:
			allInt, allNum, allBool = false, false, false
		}
		present++
	}

	vals := make([]table.Value, len(cells))
	st := table.Object
	switch {
	case present == 0:
		st = table.Float64
	case allInt:
		st = table.Int64
	case allNum:
		st = table.Float64
	case allBool:
		st = table.Bool
	}
	for i, c := range cells {
		if c == nil {
			vals[i] = table.Null()
			continue
		}
		switch st {
		case table.Int64, table.Float64:
			f, err := c.(json.Number).Float64()
			if err != nil {
				vals[i] = table.Null()
				continue
			}
			vals[i] = table.Num(f)
		case table.Bool:
			vals[i] = table.BoolValue(c.(bool))
		default:
			vals[i] = table.Str(jsonText(c))
		}
	}
	return table.NewColumn(name, st, vals)
}

func jsonText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
