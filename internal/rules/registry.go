package rules

import (
	"fmt"
	"log/slog"
	"strings"
)

// Registry holds rules keyed by unique name, in registration order.
// Define must not be called concurrently with other methods; once
// definitions are finished the registry is safe for concurrent reads.
type Registry struct {
	compiler *Compiler
	rules    []*Rule
	byName   map[string]*Rule
	logger   *slog.Logger
}

// NewRegistry creates an empty registry compiling bodies with c.
func NewRegistry(c *Compiler, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		compiler: c,
		byName:   make(map[string]*Rule),
		logger:   logger.With("component", "rules"),
	}
}

// Compiler returns the compiler used for rule bodies.
func (r *Registry) Compiler() *Compiler {
	return r.compiler
}

// Define parses spec (NAME.ARITY->BODY), attaches the per-argument filters
// and registers the rule after a validation run with placeholder arguments.
// Missing or empty filters match everything; a filter that does not compile
// is reported in Rule.FilterWarnings and left as match-all.
func (r *Registry) Define(spec string, filters []string) (*Rule, error) {
	parsed, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	if _, exists := r.byName[parsed.Name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, parsed.Name)
	}

	body, err := r.compiler.Compile(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", parsed.Name, err)
	}

	rule := &Rule{
		Name:  parsed.Name,
		Arity: parsed.Arity,
		Body:  body,
		Spec:  spec,
	}
	rule.Filters, rule.FilterWarnings = buildFilters(parsed.Arity, filters)
	for _, w := range rule.FilterWarnings {
		r.logger.Warn("Filter reverted to match-all", "rule", rule.Name, "error", w)
	}

	placeholder := string(r.compiler.Alphabet().First())
	args := make([]string, rule.Arity)
	for i := range args {
		args[i] = placeholder
	}
	if _, err := rule.Evaluate(args, pendingResolver{registry: r, pending: rule}); err != nil {
		return nil, fmt.Errorf("rule %q failed validation: %w", rule.Name, err)
	}

	r.rules = append(r.rules, rule)
	r.byName[rule.Name] = rule
	r.logger.Debug("Rule registered", "rule", rule.Name, "arity", rule.Arity)
	return rule, nil
}

// Lookup returns the rule registered under name.
func (r *Registry) Lookup(name string) (*Rule, bool) {
	rule, ok := r.byName[name]
	return rule, ok
}

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []*Rule {
	out := make([]*Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Run invokes a rule directly. The argument count must equal the rule's
// arity and, when checkFilters is set, every argument must satisfy its
// filter.
func (r *Registry) Run(name string, args []string, checkFilters bool) (string, error) {
	rule, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUndefinedRule, name)
	}
	if len(args) != rule.Arity {
		return "", fmt.Errorf("%w when running rule %q: %d required, %d given", ErrArityMismatch, name, rule.Arity, len(args))
	}
	if checkFilters {
		for i, arg := range args {
			if !rule.Filters[i].Match(arg) {
				return "", fmt.Errorf("%w: rule %q: argument %q does not satisfy %q", ErrFilterRejected, name, arg, rule.Filters[i].Pattern)
			}
		}
	}
	return rule.Evaluate(args, r)
}

// buildFilters compiles up to arity patterns, defaulting every other slot.
func buildFilters(arity int, patterns []string) ([]*Filter, []error) {
	filters := make([]*Filter, arity)
	var warnings []error
	for i := range filters {
		filters[i] = &Filter{Pattern: MatchAll}
		if i >= len(patterns) {
			continue
		}
		f, err := NewFilter(strings.TrimSpace(patterns[i]))
		if err != nil {
			warnings = append(warnings, fmt.Errorf("argument %d: %w", i, err))
			continue
		}
		filters[i] = f
	}
	if len(patterns) > arity {
		warnings = append(warnings, fmt.Errorf("%d filters given for %d arguments, extra filters ignored", len(patterns), arity))
	}
	return filters, warnings
}

// pendingResolver makes a rule under definition visible to its own
// validation run so self-calls are caught there.
type pendingResolver struct {
	registry *Registry
	pending  *Rule
}

func (p pendingResolver) Lookup(name string) (*Rule, bool) {
	if name == p.pending.Name {
		return p.pending, true
	}
	return p.registry.Lookup(name)
}
