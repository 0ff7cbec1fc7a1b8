// Package system assembles the immutable description of a formal system:
// its alphabet, axioms and rules.
package system

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/alphabet"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/rules"
)

var (
	// ErrAlphabetFrozen is returned when the alphabet or dialect is changed
	// after an axiom or rule has been added.
	ErrAlphabetFrozen = errors.New("alphabet is fixed once axioms or rules are added")
	// ErrBuilt is returned when a builder is used after Build.
	ErrBuilt = errors.New("system already built")
)

// System is an immutable formal system shared by reference between the
// evaluator and the search engine.
type System struct {
	alpha    *alphabet.Alphabet
	dialect  rules.Dialect
	axioms   []string
	registry *rules.Registry
}

// Alphabet returns the system's alphabet.
func (s *System) Alphabet() *alphabet.Alphabet { return s.alpha }

// Dialect returns the grammar dialect rule bodies were compiled with.
func (s *System) Dialect() rules.Dialect { return s.dialect }

// Axioms returns the axioms in definition order.
func (s *System) Axioms() []string {
	out := make([]string, len(s.axioms))
	copy(out, s.axioms)
	return out
}

// Rules returns the rules in registration order.
func (s *System) Rules() []*rules.Rule { return s.registry.Rules() }

// Resolver returns the resolver rule calls are looked up in.
func (s *System) Resolver() rules.Resolver { return s.registry }

// Run invokes a rule directly, see rules.Registry.Run.
func (s *System) Run(name string, args []string, checkFilters bool) (string, error) {
	return s.registry.Run(name, args, checkFilters)
}

// Builder collects the alphabet, axioms and rules of a system. The alphabet
// and dialect must be set before the first axiom or rule.
type Builder struct {
	alpha    *alphabet.Alphabet
	dialect  rules.Dialect
	registry *rules.Registry
	axioms   []string
	seen     map[string]struct{}
	built    bool
	logger   *slog.Logger
}

// NewBuilder starts a system with the default alphabet and the compose
// dialect.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		alpha:   alphabet.MustNew(alphabet.Default),
		dialect: rules.DialectCompose,
		seen:    make(map[string]struct{}),
		logger:  logger,
	}
}

// SetAlphabet replaces the alphabet.
func (b *Builder) SetAlphabet(a *alphabet.Alphabet) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	if a == nil {
		return alphabet.ErrEmpty
	}
	b.alpha = a
	return nil
}

// SetDialect selects the rule grammar dialect.
func (b *Builder) SetDialect(d rules.Dialect) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	if d == "" {
		d = rules.DialectCompose
	}
	if !d.Valid() {
		return fmt.Errorf("unknown grammar dialect %q", d)
	}
	b.dialect = d
	return nil
}

// AddAxiom adds an axiom. An axiom with characters outside the alphabet is
// dropped with a warning and the violation returned; callers may treat it
// as non-fatal.
func (b *Builder) AddAxiom(axiom string) error {
	if b.built {
		return ErrBuilt
	}
	if err := b.freeze(); err != nil {
		return err
	}
	if err := b.alpha.Check(axiom); err != nil {
		b.logger.Warn("Axiom dropped", "axiom", axiom, "error", err)
		return fmt.Errorf("axiom %q: %w", axiom, err)
	}
	if _, ok := b.seen[axiom]; ok {
		return nil
	}
	b.seen[axiom] = struct{}{}
	b.axioms = append(b.axioms, axiom)
	return nil
}

// DefineRule registers a rule, see rules.Registry.Define.
func (b *Builder) DefineRule(spec string, filters []string) (*rules.Rule, error) {
	if b.built {
		return nil, ErrBuilt
	}
	if err := b.freeze(); err != nil {
		return nil, err
	}
	return b.registry.Define(spec, filters)
}

// Build returns the finished system. The builder cannot be used afterwards.
func (b *Builder) Build() (*System, error) {
	if b.built {
		return nil, ErrBuilt
	}
	if err := b.freeze(); err != nil {
		return nil, err
	}
	b.built = true
	b.logger.Info("Formal system built",
		"alphabet", b.alpha.String(),
		"dialect", string(b.dialect),
		"axioms", len(b.axioms),
		"rules", b.registry.Len(),
	)
	return &System{
		alpha:    b.alpha,
		dialect:  b.dialect,
		axioms:   b.axioms,
		registry: b.registry,
	}, nil
}

func (b *Builder) checkMutable() error {
	if b.built {
		return ErrBuilt
	}
	if b.registry != nil {
		return ErrAlphabetFrozen
	}
	return nil
}

// freeze fixes the alphabet and dialect by creating the rule registry.
func (b *Builder) freeze() error {
	if b.registry != nil {
		return nil
	}
	c, err := rules.NewCompiler(b.alpha, b.dialect)
	if err != nil {
		return err
	}
	b.registry = rules.NewRegistry(c, b.logger)
	return nil
}
