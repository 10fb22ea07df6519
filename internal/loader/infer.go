package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabloom/internal/table"
)

var missingTokens = map[string]bool{
	"": true, "na": true, "nan": true, "null": true, "none": true, "n/a": true, "#n/a": true,
}

// IsMissing reports whether a text cell denotes a missing value.
func IsMissing(s string) bool { return missingTokens[strings.ToLower(strings.TrimSpace(s))] }

// FromRecords builds a table from a header and text rows. Short rows are padded
// with missing cells; rows longer than the header are an error.
func FromRecords(name string, header []string, rows [][]string, opt Options) (*table.Table, error) {
	names := headerNames(header)
	if opt.MaxRows > 0 && len(rows) > opt.MaxRows {
		rows = rows[:opt.MaxRows]
	}
	cells := make([][]string, len(names))
	for j := range cells {
		cells[j] = make([]string, len(rows))
	}
	for i, row := range rows {
		if len(row) > len(names) {
			return nil, &ParseError{Path: name, Line: i + 2, Err: fmt.Errorf("expected %d fields, saw %d", len(names), len(row))}
		}
		for j, v := range row {
			cells[j][i] = v
		}
	}
	cols := make([]*table.Column, len(names))
	for j, n := range names {
		cols[j] = InferColumn(n, cells[j], opt)
	}
	return table.New(name, cols...)
}

// headerNames cleans header cells: blank names become "Unnamed: <i>" and
// repeated names get a ".<n>" suffix.
func headerNames(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		base := h
		for seen[h] > 0 {
			h = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[h]++
		out[i] = h
	}
	return out
}

// InferColumn picks the narrowest storage type that holds every non-missing
// cell: int64, then float64, then bool, falling back to object. A column with
// no values is float64.
func InferColumn(name string, cells []string, opt Options) *table.Column {
	allInt, allNum, allBool := true, true, true
	present := 0
	for _, s := range cells {
		if IsMissing(s) {
			continue
		}
		present++
		t := strings.TrimSpace(s)
		if allInt {
			if _, err := strconv.ParseInt(t, 10, 64); err != nil {
				allInt = false
			}
		}
		if allNum && !allInt {
			if _, ok := parseNumeric(t, opt); !ok {
				allNum = false
			}
		}
		if allBool {
			if _, ok := parseBool(t); !ok {
				allBool = false
			}
		}
		if !allInt && !allNum && !allBool {
			break
		}
	}

	vals := make([]table.Value, len(cells))
	switch {
	case present == 0:
		for i := range vals {
			vals[i] = table.Null()
		}
		return table.NewColumn(name, table.Float64, vals)
	case allInt:
		for i, s := range cells {
			if IsMissing(s) {
				vals[i] = table.Null()
				continue
			}
			n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			vals[i] = table.Value{Num: float64(n)}
		}
		return table.NewColumn(name, table.Int64, vals)
	case allNum:
		for i, s := range cells {
			if IsMissing(s) {
				vals[i] = table.Null()
				continue
			}
			f, _ := parseNumeric(strings.TrimSpace(s), opt)
			vals[i] = table.Num(f)
		}
		return table.NewColumn(name, table.Float64, vals)
	case allBool:
		for i, s := range cells {
			if IsMissing(s) {
				vals[i] = table.Null()
				continue
			}
			b, _ := parseBool(strings.TrimSpace(s))
			vals[i] = table.BoolValue(b)
		}
		return table.NewColumn(name, table.Bool, vals)
	}
	for i, s := range cells {
		if IsMissing(s) {
			vals[i] = table.Null()
			continue
		}
		vals[i] = table.Str(s)
	}
	return table.NewColumn(name, table.Object, vals)
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// parseNumeric accepts locale-formatted numbers such as "1.234,5", "1,234.5"
// and "12%".
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.ReplaceAll(s, "%", "")
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
	if raw == "" {
		return 0, false
	}
	dec, thou := opt.DecimalSeparator, opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
