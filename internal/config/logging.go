package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

var (
	logLevels         = []string{"debug", "info", "warn", "error"}
	consoleLogFormats = []string{"console", "json"}
	fileLogFormats    = []string{"text", "json"}
)

const (
	defaultLogDir     = "logs"
	defaultLogMaxSize = 10
	defaultLogBackups = 3
	defaultLogMaxAge  = 7
)

// LoggingConfig configures the two log sinks: diagnostics on stderr and an
// optional pair of rotated files.
type LoggingConfig struct {
	Console ConsoleConfig `yaml:"console"`
	File    FileConfig    `yaml:"file"`
}

// ConsoleConfig configures diagnostics written to stderr, which never mix
// with derivation output on stdout.
type ConsoleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	// Format is "console" for terse "level: msg key=val" lines, or "json".
	Format string `yaml:"format"`
}

// FileConfig configures fsys.log and errors.log under Dir.
type FileConfig struct {
	Enabled bool `yaml:"enabled"`
	// Dir is resolved against the parent of the config directory.
	Dir        string `yaml:"dir"`
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text or json
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultLoggingConfig shows warnings on stderr and keeps file logging off.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Console: ConsoleConfig{Enabled: true, Level: "warn", Format: "console"},
		File: FileConfig{
			Dir:        defaultLogDir,
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  defaultLogMaxSize,
			MaxBackups: defaultLogBackups,
			MaxAgeDays: defaultLogMaxAge,
		},
	}
}

// ApplyDefaults fills empty fields. Enabled flags are left alone.
func (c *LoggingConfig) ApplyDefaults() {
	if c.Console.Level == "" {
		c.Console.Level = "warn"
	}
	if c.Console.Format == "" {
		c.Console.Format = "console"
	}
	if c.File.Dir == "" {
		c.File.Dir = defaultLogDir
	}
	if c.File.Level == "" {
		c.File.Level = "info"
	}
	if c.File.Format == "" {
		c.File.Format = "text"
	}
	if c.File.MaxSizeMB == 0 {
		c.File.MaxSizeMB = defaultLogMaxSize
	}
}

// ApplyEnvOverrides applies FSYS_LOG_* variables. FSYS_LOG_DIR also turns
// file logging on.
func (c *LoggingConfig) ApplyEnvOverrides() {
	if val := os.Getenv("FSYS_LOG_LEVEL"); val != "" {
		c.Console.Level = val
		c.File.Level = val
	}
	if val := os.Getenv("FSYS_LOG_FORMAT"); val != "" {
		c.File.Format = val
	}
	if val := os.Getenv("FSYS_LOG_DIR"); val != "" {
		c.File.Dir = val
		c.File.Enabled = true
	}
}

// ResolvePaths places a relative log dir next to the config directory, so
// the default "logs" ends up beside "config".
func (c *LoggingConfig) ResolvePaths(configDir string) {
	if c.File.Dir == "" || filepath.IsAbs(c.File.Dir) {
		return
	}
	c.File.Dir = filepath.Join(filepath.Dir(configDir), c.File.Dir)
}

// Validate checks the sinks that are enabled.
func (c *LoggingConfig) Validate() error {
	if c.Console.Enabled {
		if !slices.Contains(logLevels, c.Console.Level) {
			return fmt.Errorf("logging.console.level %q must be one of %v", c.Console.Level, logLevels)
		}
		if !slices.Contains(consoleLogFormats, c.Console.Format) {
			return fmt.Errorf("logging.console.format %q must be one of %v", c.Console.Format, consoleLogFormats)
		}
	}
	if !c.File.Enabled {
		return nil
	}
	if c.File.Dir == "" {
		return fmt.Errorf("logging.file.dir cannot be empty")
	}
	if !slices.Contains(logLevels, c.File.Level) {
		return fmt.Errorf("logging.file.level %q must be one of %v", c.File.Level, logLevels)
	}
	if !slices.Contains(fileLogFormats, c.File.Format) {
		return fmt.Errorf("logging.file.format %q must be one of %v", c.File.Format, fileLogFormats)
	}
	if c.File.MaxSizeMB < 0 || c.File.MaxBackups < 0 || c.File.MaxAgeDays < 0 {
		return fmt.Errorf("logging.file rotation limits cannot be negative")
	}
	return nil
}
