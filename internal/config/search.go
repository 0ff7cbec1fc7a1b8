package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/search"
)

// SearchConfig holds the derivation search bounds.
type SearchConfig struct {
	MaxDepth  int `yaml:"max_depth"`
	MaxLength int `yaml:"max_length"`
	// Workers evaluating rule tuples concurrently; 1 is sequential.
	Workers int `yaml:"workers"`
}

// DefaultSearchConfig returns the default search bounds.
func DefaultSearchConfig() SearchConfig {
	opts := search.DefaultOptions()
	return SearchConfig{
		MaxDepth:  opts.MaxDepth,
		MaxLength: opts.MaxLength,
		Workers:   opts.Workers,
	}
}

// ApplyDefaults fills in zero values with defaults. A zero depth is a valid
// bound and is kept.
func (c *SearchConfig) ApplyDefaults() {
	defaults := DefaultSearchConfig()
	if c.MaxLength == 0 {
		c.MaxLength = defaults.MaxLength
	}
	if c.Workers == 0 {
		c.Workers = defaults.Workers
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *SearchConfig) ApplyEnvOverrides() {
	if v := os.Getenv("FSYS_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxDepth = n
		}
	}
	if v := os.Getenv("FSYS_MAX_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxLength = n
		}
	}
	if v := os.Getenv("FSYS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

// ResolvePaths is a no-op: the search section holds no paths.
func (c *SearchConfig) ResolvePaths(string) {}

// Validate returns an error if the configuration is invalid.
func (c *SearchConfig) Validate() error {
	if c.MaxDepth < 0 || c.MaxDepth > search.MaxDepthCap {
		return fmt.Errorf("search.max_depth must be between 0 and %d, got %d", search.MaxDepthCap, c.MaxDepth)
	}
	if c.MaxLength < 0 || c.MaxLength > search.MaxLengthCap {
		return fmt.Errorf("search.max_length must be between 0 and %d, got %d", search.MaxLengthCap, c.MaxLength)
	}
	if c.Workers < 1 {
		return fmt.Errorf("search.workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// Options converts the section into engine options.
func (c *SearchConfig) Options() search.Options {
	return search.Options{
		MaxDepth:  c.MaxDepth,
		MaxLength: c.MaxLength,
		Workers:   c.Workers,
	}
}
