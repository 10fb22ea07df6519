// Package report renders analysis results as compact Markdown.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/tabloom/internal/correct"
	"github.com/KaramelBytes/tabloom/internal/describe"
	"github.com/KaramelBytes/tabloom/internal/matrix"
	"github.com/KaramelBytes/tabloom/internal/table"
)

// topPairs caps the strongest-pairs list under the grid.
const topPairs = 10

// Input bundles the pieces of one analysis. Changes and Matrix may be nil.
type Input struct {
	Name      string
	Table     *table.Table
	Summaries []describe.Summary
	Changes   []correct.Change
	Matrix    *matrix.Matrix
}

// Markdown renders the [DATASET SUMMARY], [SCHEMA], [TYPE CORRECTIONS] and
// [ASSOCIATIONS] sections.
func Markdown(in Input) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if in.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", in.Name))
	}
	if in.Table != nil {
		b.WriteString(fmt.Sprintf("Rows: %d\n", in.Table.Rows()))
		b.WriteString(fmt.Sprintf("Columns: %d\n", in.Table.Width()))
	}

	b.WriteString("\n[SCHEMA]\n")
	for _, s := range in.Summaries {
		writeSummary(&b, s)
	}

	b.WriteString("\n[TYPE CORRECTIONS]\n")
	if len(in.Changes) == 0 {
		b.WriteString("- none\n")
	}
	for _, c := range in.Changes {
		b.WriteString(fmt.Sprintf("- %s: %s/%s → %s/%s (%s)", safeName(c.Column), c.FromStorage, c.From, c.ToStorage, c.To, c.Rule))
		if c.Dropped > 0 {
			b.WriteString(fmt.Sprintf("; %d unparseable values set missing", c.Dropped))
		}
		b.WriteString("\n")
	}

	if in.Matrix != nil {
		b.WriteString("\n[ASSOCIATIONS]\n")
		writeMatrix(&b, in.Matrix)
	}
	return b.String()
}

func writeSummary(b *strings.Builder, s describe.Summary) {
	b.WriteString(fmt.Sprintf("- %s: %s (%s; non-null %d, missing %.1f%%)", safeName(s.Name), s.Kind, s.Storage, s.NonNull, s.MissingPct()))
	switch s.Kind {
	case table.KindNumeric:
		if s.NonNull == 0 {
			break
		}
		b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, std %.4g, median %.4g", s.Min, s.Max, s.Mean, s.Std, s.Median))
		if s.Outliers > 0 {
			b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f (max |z|≈%.2f)", s.Outliers, describe.OutlierThreshold, s.MaxAbsZ))
		}
	case table.KindCategorical, table.KindBoolean:
		if len(s.TopValues) > 0 {
			b.WriteString(" — top: ")
			for i, kv := range s.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			if s.Unique > len(s.TopValues) {
				b.WriteString(fmt.Sprintf("; unique=%d", s.Unique))
			}
		}
	case table.KindDateTime:
		if !s.Earliest.IsZero() {
			b.WriteString(fmt.Sprintf(" — from %s to %s", s.Earliest.Format("2006-01-02"), s.Latest.Format("2006-01-02")))
		}
	}
	b.WriteString("\n")
}

func writeMatrix(b *strings.Builder, m *matrix.Matrix) {
	b.WriteString(fmt.Sprintf("Method: %s\n", m.Method))
	if m.Status != matrix.StatusOK {
		b.WriteString(fmt.Sprintf("- not computed: %v\n", m.Err()))
		return
	}
	if !m.Symmetric() {
		b.WriteString("Rows are the explained column: cell (A, B) is U(A|B).\n")
	}
	labels := m.Labels()
	b.WriteString("\n| |")
	for _, l := range labels {
		b.WriteString(" " + safeVal(l) + " |")
	}
	b.WriteString("\n|---|")
	for range labels {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for i, l := range labels {
		b.WriteString("| " + safeVal(l) + " |")
		for j := range labels {
			cell := "—"
			if !math.IsNaN(m.At(i, j)) {
				cell = m.Cell(i, j)
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	pairs := m.TopPairs(topPairs)
	if len(pairs) == 0 {
		return
	}
	b.WriteString("\nStrongest pairs:\n")
	for _, p := range pairs {
		b.WriteString(fmt.Sprintf("- %s ~ %s: %s\n", p.A, p.B, matrix.FormatScore(p.Value)))
	}
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
