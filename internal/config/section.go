package config

// Section defines the configuration lifecycle every config section follows.
type Section interface {
	// ApplyDefaults fills zero values with sensible defaults
	ApplyDefaults()

	// ApplyEnvOverrides applies environment variable overrides
	ApplyEnvOverrides()

	// ResolvePaths resolves relative paths against the config directory
	ResolvePaths(configDir string)

	// Validate returns an error if the configuration is invalid.
	Validate() error
}

// ApplySections applies the configuration lifecycle to all sections.
// It calls ApplyDefaults, ApplyEnvOverrides, ResolvePaths, and Validate in order.
func ApplySections(configDir string, sections ...Section) error {
	for _, s := range sections {
		s.ApplyDefaults()
		s.ApplyEnvOverrides()
		s.ResolvePaths(configDir)
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
