// internal/logging/logger_test.go
package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/config"
)

func TestNewLogger_ConsoleOnlyByDefault(t *testing.T) {
	cfg := config.DefaultLoggingConfig()
	cfg.File.Dir = filepath.Join(t.TempDir(), "logs")

	buf := &bytes.Buffer{}
	logger, err := NewLogger(cfg, buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("Axiom dropped", "axiom", "abc")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Equal(t, "warn: Axiom dropped axiom=abc\n", buf.String())

	// File logging is off, so nothing is created.
	assert.NoDirExists(t, cfg.File.Dir)
}

func TestNewLogger_FileOutput(t *testing.T) {
	cfg := config.DefaultLoggingConfig()
	cfg.File.Dir = t.TempDir()
	cfg.File.Enabled = true
	cfg.Console.Enabled = false

	logger, err := NewLogger(cfg, nil)
	require.NoError(t, err)

	logger.Info("info message")
	logger.Warn("warning message")
	require.NoError(t, Shutdown())

	main, err := os.ReadFile(filepath.Join(cfg.File.Dir, "fsys.log"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "info message")
	assert.Contains(t, string(main), "warning message")

	errs, err := os.ReadFile(filepath.Join(cfg.File.Dir, "errors.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(errs), "info message")
	assert.Contains(t, string(errs), "warning message")
}

func TestNewLogger_JSONFormat(t *testing.T) {
	cfg := config.DefaultLoggingConfig()
	cfg.File.Dir = t.TempDir()
	cfg.File.Enabled = true
	cfg.File.Format = "json"
	cfg.Console.Format = "json"

	buf := &bytes.Buffer{}
	logger, err := NewLogger(cfg, buf)
	require.NoError(t, err)

	logger.Warn("test json", "key", "value")
	require.NoError(t, Shutdown())

	assert.Contains(t, buf.String(), `"msg":"test json"`)
	content, err := os.ReadFile(filepath.Join(cfg.File.Dir, "fsys.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"key":"value"`)
}

func TestNewLogger_NothingEnabled(t *testing.T) {
	cfg := config.DefaultLoggingConfig()
	cfg.Console.Enabled = false

	logger, err := NewLogger(cfg, nil)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}

func TestNewLogger_BadDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	cfg := config.DefaultLoggingConfig()
	cfg.File.Enabled = true
	cfg.File.Dir = filepath.Join(file, "logs")

	_, err := NewLogger(cfg, nil)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestInitialize_SetsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	cfg := config.DefaultLoggingConfig()
	buf := &bytes.Buffer{}
	logger, err := Initialize(cfg, buf)
	require.NoError(t, err)

	slog.Warn("Rule rejected", "spec", "bad")
	assert.Same(t, logger, slog.Default())
	assert.Equal(t, "warn: Rule rejected spec=bad\n", buf.String())
}
