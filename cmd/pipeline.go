package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/tabloom/internal/assoc"
	"github.com/KaramelBytes/tabloom/internal/correct"
	"github.com/KaramelBytes/tabloom/internal/describe"
	"github.com/KaramelBytes/tabloom/internal/loader"
	"github.com/KaramelBytes/tabloom/internal/matrix"
	"github.com/KaramelBytes/tabloom/internal/report"
	"github.com/KaramelBytes/tabloom/internal/table"
)

// loadFlags are the reader options shared by every command that opens a file.
type loadFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sheetName  string
	sheetIndex int
	maxRows    int
}

func (l *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&l.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
	cmd.Flags().StringVar(&l.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	cmd.Flags().StringVar(&l.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	cmd.Flags().StringVar(&l.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	cmd.Flags().IntVar(&l.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().IntVar(&l.maxRows, "max-rows", -1, "maximum rows to load (0 = unlimited; default from config)")
}

func (l *loadFlags) options() (loader.Options, error) {
	opt := loader.Options{
		MaxRows:    cfg.MaxRows,
		Sheet:      l.sheetName,
		SheetIndex: l.sheetIndex,
	}
	if l.maxRows >= 0 {
		opt.MaxRows = l.maxRows
	}
	delim := l.delimiter
	if delim == "" {
		delim = cfg.Delimiter
	}
	switch delim {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", delim)
	}
	switch strings.ToLower(strings.TrimSpace(l.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", l.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(l.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", l.thousands)
	}
	return opt, nil
}

// analysis is the outcome of one load → correct → describe → matrix run.
type analysis struct {
	Path      string
	Raw       *table.Table
	Table     *table.Table
	Changes   []correct.Change
	Summaries []describe.Summary
	Matrix    *matrix.Matrix
}

func (a *analysis) Markdown() string {
	return report.Markdown(report.Input{
		Name:      a.Raw.Name,
		Table:     a.Table,
		Summaries: a.Summaries,
		Changes:   a.Changes,
		Matrix:    a.Matrix,
	})
}

// loadAndCorrect reads path and applies type correction.
func loadAndCorrect(path string, opt loader.Options) (*table.Table, *table.Table, []correct.Change, error) {
	raw, err := loader.Load(path, opt)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Debug("table loaded", zap.String("path", path), zap.Int("rows", raw.Rows()), zap.Int("columns", raw.Width()))
	fixed, changes := correct.New(correctorConfig(), correct.WithLogger(logger)).CorrectWithLog(raw)
	return raw, fixed, changes, nil
}

func analyze(path string, opt loader.Options, m assoc.Method, columns []string) (*analysis, error) {
	raw, fixed, changes, err := loadAndCorrect(path, opt)
	if err != nil {
		return nil, err
	}
	mopts := []matrix.Option{matrix.WithLogger(logger)}
	if len(columns) > 0 {
		mopts = append(mopts, matrix.WithColumns(columns...))
	}
	mx := matrix.Build(fixed, m, mopts...)
	if mx.Status == matrix.StatusInvalidColumns {
		return nil, mx.Err()
	}
	return &analysis{
		Path:      path,
		Raw:       raw,
		Table:     fixed,
		Changes:   changes,
		Summaries: describe.Table(fixed),
		Matrix:    mx,
	}, nil
}
