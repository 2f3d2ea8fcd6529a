package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	l, err := New("debug", "json")
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zap.DebugLevel))

	l, err = New("bogus", "text")
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zap.InfoLevel))
}

func TestNewHonoursEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	l, err := New("debug", "text")
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zap.WarnLevel))
}

func TestGlobal(t *testing.T) {
	SetGlobal(nil)
	assert.NotNil(t, Get())
	assert.NoError(t, Close())

	l := zap.NewExample().Sugar()
	SetGlobal(l)
	defer SetGlobal(nil)
	assert.Same(t, l, Get())

	assert.NotNil(t, OrNop(nil))
	assert.Same(t, l, OrNop(l))
}

func TestMaskConnString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"postgres://stars:secret@db:5432/stargazing?sslmode=disable", "postgres://stars:xxxxx@db:5432/stargazing?sslmode=disable"},
		{"postgres://db:5432/stargazing", "postgres://db:5432/stargazing"},
		{"host=db user=stars password=secret dbname=stargazing", "host=db user=stars password=xxxxx dbname=stargazing"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MaskConnString(tt.input))
	}
}
