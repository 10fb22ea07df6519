package loader

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/KaramelBytes/tabloom/internal/table"
)

// WriteCSV writes t as comma-separated text with a header row. Missing cells
// are empty, so the output reads back through ReadCSV with the same columns.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, t.Width())
	for i := 0; i < t.Rows(); i++ {
		for j, c := range t.Columns {
			rec[j] = c.Text(i)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
