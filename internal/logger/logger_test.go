package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLoad_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := Load("warn", &buf)
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", "status", 500)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown status=500")
}

func TestOpen_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "mytodo.log")
	l, c, err := Open(p, "info")
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, c.Close())

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "msg=hello")
}
