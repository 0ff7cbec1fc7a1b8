// internal/logging/logger.go
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/config"
)

const (
	mainLogName  = "fsys.log"
	errorLogName = "errors.log"
)

var (
	logFiles   []*lumberjack.Logger
	logFilesMu sync.Mutex
)

// Initialize builds a logger from cfg and installs it as the slog default.
// Console records go to console, normally stderr so they never mix with
// derivation output.
func Initialize(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, error) {
	logger, err := NewLogger(cfg, console)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)

	logger.Debug("Logging initialized",
		"console_enabled", cfg.Console.Enabled,
		"console_level", cfg.Console.Level,
		"file_enabled", cfg.File.Enabled,
		"dir", cfg.File.Dir,
	)
	return logger, nil
}

// NewLogger creates a logger writing console records to console and, when
// file logging is on, to rotated files under cfg.File.Dir.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, error) {
	var handlers []slog.Handler

	if cfg.Console.Enabled && console != nil {
		handlers = append(handlers, createHandler(console, cfg.Console.Format, parseLevel(cfg.Console.Level), true))
	}

	if cfg.File.Enabled {
		if err := os.MkdirAll(cfg.File.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		level := parseLevel(cfg.File.Level)

		mainFile := openRotated(cfg.File, mainLogName)
		handlers = append(handlers, createHandler(mainFile, cfg.File.Format, level, false))

		// errors.log keeps warnings and errors regardless of the file level.
		errorFile := openRotated(cfg.File, errorLogName)
		errorHandler := createHandler(errorFile, cfg.File.Format, slog.LevelDebug, false)
		handlers = append(handlers, NewLevelFilter(errorHandler, slog.LevelWarn))
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.DiscardHandler), nil
	case 1:
		return slog.New(handlers[0]), nil
	default:
		return slog.New(NewMultiHandler(handlers...)), nil
	}
}

// Shutdown closes all rotated log files.
func Shutdown() error {
	logFilesMu.Lock()
	defer logFilesMu.Unlock()

	var firstErr error
	for _, f := range logFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close log file %s: %w", f.Filename, err)
		}
	}
	logFiles = nil
	return firstErr
}

func openRotated(cfg config.FileConfig, name string) *lumberjack.Logger {
	f := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, name),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	logFilesMu.Lock()
	logFiles = append(logFiles, f)
	logFilesMu.Unlock()
	return f
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func createHandler(w io.Writer, format string, level slog.Level, console bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	switch {
	case format == "json":
		return slog.NewJSONHandler(w, opts)
	case console:
		return NewConsoleHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}
