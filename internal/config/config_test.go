package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithEmptyHome(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, 0.05, c.SampleFraction)
	assert.Equal(t, 0.70, c.DateTimeThreshold)
	assert.Equal(t, "pearson", c.DefaultMethod)
	assert.Equal(t, "markdown", c.OutputFormat)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	c := Default()
	c.Seed = 7
	c.DefaultMethod = "theils_u"
	require.NoError(t, Save(c, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Seed)
	assert.Equal(t, "theils_u", got.DefaultMethod)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 3\n"), 0o644))
	t.Setenv("TABLOOM_SEED", "11")
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.Seed)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Global)
	}{
		{"zero fraction", func(c *Global) { c.SampleFraction = 0 }},
		{"fraction above one", func(c *Global) { c.SampleFraction = 1.5 }},
		{"threshold", func(c *Global) { c.DateTimeThreshold = -1 }},
		{"method", func(c *Global) { c.DefaultMethod = "mutual_info" }},
		{"rows", func(c *Global) { c.MaxRows = -1 }},
		{"format", func(c *Global) { c.OutputFormat = "html" }},
		{"jobs", func(c *Global) { c.BatchJobs = 0 }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mut(c)
			err := c.Validate()
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}
