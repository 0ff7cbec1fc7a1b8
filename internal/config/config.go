package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDir is the directory searched for layered config files.
	DefaultDir = "config"
	baseFile   = "fsys.yml"
	localFile  = "fsys.local.yml"
)

// Config holds the application configuration
type Config struct {
	System  SystemConfig  `yaml:"system"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
	Events  EventsConfig  `yaml:"events"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		System:  DefaultSystemConfig(),
		Search:  DefaultSearchConfig(),
		Logging: DefaultLoggingConfig(),
		Events:  DefaultEventsConfig(),
	}
}

// Load builds the configuration.
// Order: defaults -> <dir>/fsys.yml -> <dir>/fsys.local.yml -> explicit file
// -> setup args -> ApplyDefaults -> ApplyEnvOverrides -> ResolvePaths -> Validate.
// Missing layered files are skipped; a missing explicit file is an error.
func Load(configDir, explicitFile string, setupArgs []string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultDir
	}
	cfg := Default()

	loadFile(filepath.Join(configDir, baseFile), cfg)
	loadFile(filepath.Join(configDir, localFile), cfg)

	if explicitFile != "" {
		data, err := os.ReadFile(explicitFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", explicitFile, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", explicitFile, err)
		}
		configDir = filepath.Dir(explicitFile)
	}

	if err := ApplySetupArgs(cfg, setupArgs); err != nil {
		return nil, err
	}

	if err := ApplySections(configDir,
		&cfg.Logging,
		&cfg.System,
		&cfg.Search,
		&cfg.Events,
	); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func loadFile(filename string, cfg *Config) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return // File doesn't exist, skip
		}
		slog.Warn("Error reading config file", "file", filename, "error", err)
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("Error parsing config file", "file", filename, "error", err)
	}
}
