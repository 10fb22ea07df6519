package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
		ok   bool
	}{
		{"", zapcore.WarnLevel, true},
		{"DEBUG", zapcore.DebugLevel, true},
		{" info ", zapcore.InfoLevel, true},
		{"warning", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"verbose", zapcore.WarnLevel, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
		} else {
			require.Error(t, err, tt.in)
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewDebugOverridesLevel(t *testing.T) {
	l, err := New("error", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("error", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = New("loud", false)
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
