package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zap.DebugLevel,
		" WARN ":  zap.WarnLevel,
		"warning": zap.WarnLevel,
		"error":   zap.ErrorLevel,
		"info":    zap.InfoLevel,
		"":        zap.InfoLevel,
		"verbose": zap.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"console", "json", ""} {
		l, err := New(Options{Level: "debug", Format: format})
		require.NoError(t, err, format)
		assert.True(t, l.Core().Enabled(zap.DebugLevel), format)
	}

	l, err := New(Options{Level: "error"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.WarnLevel))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
