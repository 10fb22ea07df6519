package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/tabloom/internal/assoc"
	"github.com/KaramelBytes/tabloom/internal/correct"
	"github.com/KaramelBytes/tabloom/internal/describe"
	"github.com/KaramelBytes/tabloom/internal/matrix"
	"github.com/KaramelBytes/tabloom/internal/table"
)

func TestMarkdownSections(t *testing.T) {
	raw := table.MustNew("t",
		table.FloatColumn("x", 1, 2, 3, 4),
		table.FloatColumn("y", 2, 4, 6, 9),
		table.StringColumn("c", "a", "b", "a", "b"),
		table.IntColumn("flag", 0, 1, 1, 0),
	)
	tb, changes := correct.New(correct.DefaultConfig()).CorrectWithLog(raw)
	md := Markdown(Input{
		Name:      "t.csv",
		Table:     tb,
		Summaries: describe.Table(tb),
		Changes:   changes,
		Matrix:    matrix.Build(tb, assoc.Pearson),
	})

	for _, section := range []string{"[DATASET SUMMARY]", "[SCHEMA]", "[TYPE CORRECTIONS]", "[ASSOCIATIONS]"} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "File: t.csv")
	assert.Contains(t, md, "Rows: 4")
	assert.Contains(t, md, "- flag: int64/numeric → bool/boolean (boolean_from_numeric)")
	assert.Contains(t, md, "Method: pearson")
	assert.Contains(t, md, "| x | 1.00 |")
	assert.Contains(t, md, "—", "incompatible cells are dashes")
	assert.Contains(t, md, "- x ~ y:")
}

func TestMarkdownInsufficientColumns(t *testing.T) {
	tb := table.MustNew("one", table.FloatColumn("x", 1, 2))
	md := Markdown(Input{Table: tb, Summaries: describe.Table(tb), Matrix: matrix.Build(tb, assoc.Spearman)})
	assert.Contains(t, md, "- not computed: insufficient columns")
	assert.Contains(t, md, "- none")
	assert.False(t, strings.Contains(md, "| x |"))
}

func TestMarkdownTheilsNote(t *testing.T) {
	tb := table.MustNew("t",
		table.StringColumn("a", "x", "y", "x"),
		table.StringColumn("b", "p", "p", "q"),
	)
	md := Markdown(Input{Table: tb, Matrix: matrix.Build(tb, assoc.TheilsU)})
	assert.Contains(t, md, "U(A|B)")
}
