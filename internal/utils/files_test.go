package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.md")
	require.NoError(t, SafeWriteFile(p, []byte("one")))
	require.NoError(t, SafeWriteFile(p, []byte("two")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestUniqueStems(t *testing.T) {
	got := UniqueStems([]string{"d1/metrics.csv", "d2/metrics.csv", "a.tsv", "d3/metrics.xlsx"})
	assert.Equal(t, []string{"metrics", "metrics__2", "a", "metrics__3"}, got)
	assert.Equal(t, "report.tar", Stem("/x/report.tar.gz"))
}
