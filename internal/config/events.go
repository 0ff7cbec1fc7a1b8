package config

import (
	"fmt"
	"os"
	"strings"
)

// EventsConfig controls publishing of derived theorems to NATS JetStream.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	NatsURL string `yaml:"nats_url"`
	// Stream is created if missing and captures SubjectPrefix.>.
	Stream        string `yaml:"stream"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// DefaultEventsConfig returns the default events configuration.
func DefaultEventsConfig() EventsConfig {
	return EventsConfig{
		Enabled:       false,
		NatsURL:       "nats://localhost:4222",
		Stream:        "THEOREMS",
		SubjectPrefix: "theorems",
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *EventsConfig) ApplyDefaults() {
	defaults := DefaultEventsConfig()
	if c.NatsURL == "" {
		c.NatsURL = defaults.NatsURL
	}
	if c.Stream == "" {
		c.Stream = defaults.Stream
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = defaults.SubjectPrefix
	}
}

// ApplyEnvOverrides applies environment variable overrides. Setting
// FSYS_NATS_URL enables publishing.
func (c *EventsConfig) ApplyEnvOverrides() {
	if val := os.Getenv("FSYS_NATS_URL"); val != "" {
		c.NatsURL = val
		c.Enabled = true
	}
	if val := os.Getenv("FSYS_EVENTS_ENABLED"); val != "" {
		c.Enabled = val == "true" || val == "1"
	}
}

// ResolvePaths is a no-op: the events section holds no paths.
func (c *EventsConfig) ResolvePaths(string) {}

// Validate returns an error if the configuration is invalid.
func (c *EventsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.NatsURL == "" {
		return fmt.Errorf("events.nats_url is required when events are enabled")
	}
	if strings.ContainsAny(c.SubjectPrefix, " *>") || strings.HasSuffix(c.SubjectPrefix, ".") {
		return fmt.Errorf("events.subject_prefix %q is not a valid subject", c.SubjectPrefix)
	}
	return nil
}
