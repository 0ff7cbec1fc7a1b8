package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/alphabet"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/rules"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/system"
)

// SystemConfig describes the formal system to explore.
type SystemConfig struct {
	// Alphabet lists the permitted characters in order.
	Alphabet string `yaml:"alphabet"`
	// Dialect is the rule grammar: compose (rule calls) or replace ({a^b}).
	Dialect string       `yaml:"dialect"`
	Axioms  []string     `yaml:"axioms"`
	Rules   []RuleConfig `yaml:"rules"`
}

// RuleConfig is one rule definition with its optional argument filters.
type RuleConfig struct {
	// Spec is NAME.ARITY->BODY.
	Spec string `yaml:"spec"`
	// Filters holds one regex per argument; missing entries match anything.
	Filters []string `yaml:"filters"`
}

// DefaultSystemConfig returns an empty system over the default alphabet.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		Alphabet: alphabet.Default,
		Dialect:  string(rules.DialectCompose),
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *SystemConfig) ApplyDefaults() {
	defaults := DefaultSystemConfig()
	if c.Alphabet == "" {
		c.Alphabet = defaults.Alphabet
	}
	if c.Dialect == "" {
		c.Dialect = defaults.Dialect
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *SystemConfig) ApplyEnvOverrides() {
	if val := os.Getenv("FSYS_ALPHABET"); val != "" {
		c.Alphabet = val
	}
	if val := os.Getenv("FSYS_DIALECT"); val != "" {
		c.Dialect = val
	}
}

// ResolvePaths is a no-op: the system section holds no paths.
func (c *SystemConfig) ResolvePaths(string) {}

// Validate returns an error if the configuration is invalid. Axioms and
// rule bodies are checked when the system is built.
func (c *SystemConfig) Validate() error {
	if c.Alphabet == "" {
		return fmt.Errorf("system.alphabet cannot be empty")
	}
	if !rules.Dialect(c.Dialect).Valid() {
		return fmt.Errorf("system.dialect must be %q or %q, got %q", rules.DialectCompose, rules.DialectReplace, c.Dialect)
	}
	for i, r := range c.Rules {
		if strings.TrimSpace(r.Spec) == "" {
			return fmt.Errorf("system.rules[%d].spec cannot be empty", i)
		}
	}
	return nil
}

// FilterSource supplies argument filters for rules whose configuration has
// none, such as an interactive prompt.
type FilterSource interface {
	Filters(ruleName string, arity int) ([]string, error)
}

// BuildSystem turns the configuration into an immutable system. Invalid
// axioms and rules are skipped; each rejection is returned in the error
// slice so callers can report which construct failed and why. A nil system
// means the configuration could not be used at all. src may be nil.
func BuildSystem(c SystemConfig, src FilterSource, logger *slog.Logger) (*system.System, []error) {
	if logger == nil {
		logger = slog.Default()
	}
	var problems []error

	b := system.NewBuilder(logger)
	alpha, err := alphabet.New(c.Alphabet)
	if err != nil {
		return nil, []error{err}
	}
	if err := b.SetAlphabet(alpha); err != nil {
		return nil, []error{err}
	}
	if err := b.SetDialect(rules.Dialect(c.Dialect)); err != nil {
		return nil, []error{err}
	}

	for _, ax := range c.Axioms {
		if err := b.AddAxiom(ax); err != nil {
			problems = append(problems, err)
		}
	}

	for _, rc := range c.Rules {
		filters := rc.Filters
		if filters == nil && src != nil {
			parsed, err := rules.ParseSpec(rc.Spec)
			if err == nil && parsed.Arity > 0 {
				filters, err = src.Filters(parsed.Name, parsed.Arity)
				if err != nil {
					return nil, append(problems, fmt.Errorf("reading filters for rule %q: %w", parsed.Name, err))
				}
			}
		}
		rule, err := b.DefineRule(rc.Spec, filters)
		if err != nil {
			logger.Warn("Rule rejected", "spec", rc.Spec, "error", err)
			problems = append(problems, err)
			continue
		}
		for _, w := range rule.FilterWarnings {
			problems = append(problems, fmt.Errorf("rule %q: %w", rule.Name, w))
		}
	}

	sys, err := b.Build()
	if err != nil {
		return nil, append(problems, err)
	}
	return sys, problems
}
