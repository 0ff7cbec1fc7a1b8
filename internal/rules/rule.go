package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/dlclark/regexp2"
)

// MatchAll is the pattern shown for an argument without a filter.
const MatchAll = ".*"

// filterTimeout bounds a single filter match so a pathological pattern
// cannot stall a search iteration.
const filterTimeout = time.Second

var specRegex = regexp.MustCompile(`(?s)^([A-Za-z_][A-Za-z0-9_]*)\.([0-9]+)->(.*)$`)

// Rule is a named fixed-arity transform. Rules are immutable once registered.
type Rule struct {
	Name    string
	Arity   int
	Filters []*Filter
	Body    *Template
	// Spec is the full definition text, NAME.ARITY->BODY.
	Spec string
	// FilterWarnings lists filters that were rejected and reverted to
	// match-all during definition.
	FilterWarnings []error
}

// Evaluate runs the rule body directly. Unlike a RuleCall, a direct
// invocation must supply exactly Arity arguments.
func (r *Rule) Evaluate(args []string, resolver Resolver) (string, error) {
	if len(args) != r.Arity {
		return "", fmt.Errorf("%w when running rule %q: %d required, %d given", ErrArityMismatch, r.Name, r.Arity, len(args))
	}
	st := &evalState{resolver: resolver, alpha: r.Body.alpha}
	return st.call(r, args)
}

// Accepts reports whether every argument satisfies its filter. len(args)
// must equal Arity.
func (r *Rule) Accepts(args []string) bool {
	for i, arg := range args {
		if !r.Filters[i].Match(arg) {
			return false
		}
	}
	return true
}

// Filter restricts one rule argument to a regular language. A filter must
// match the whole argument.
type Filter struct {
	Pattern string
	re      *regexp2.Regexp
}

// NewFilter compiles pattern. An empty pattern matches everything.
func NewFilter(pattern string) (*Filter, error) {
	if pattern == "" || pattern == MatchAll {
		return &Filter{Pattern: MatchAll}, nil
	}
	re, err := regexp2.Compile(`\A(?:`+pattern+`)\z`, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidFilterRegex, pattern, err)
	}
	re.MatchTimeout = filterTimeout
	return &Filter{Pattern: pattern, re: re}, nil
}

// Match reports whether s is in the filter's language. A match that times
// out counts as a rejection.
func (f *Filter) Match(s string) bool {
	if f == nil || f.re == nil {
		return true
	}
	ok, err := f.re.MatchString(s)
	return err == nil && ok
}

// IsMatchAll reports whether the filter accepts every string.
func (f *Filter) IsMatchAll() bool {
	return f == nil || f.re == nil
}

// ParsedSpec is the structural decomposition of NAME.ARITY->BODY.
type ParsedSpec struct {
	Name  string
	Arity int
	Body  string
}

// ParseSpec splits a rule definition into its name, arity and body.
func ParseSpec(spec string) (ParsedSpec, error) {
	m := specRegex.FindStringSubmatch(spec)
	if m == nil {
		return ParsedSpec{}, fmt.Errorf("%w: %q: expected NAME.ARITY->BODY", ErrMalformedSpec, spec)
	}
	arity, err := strconv.Atoi(m[2])
	if err != nil {
		return ParsedSpec{}, fmt.Errorf("%w: %q: arity %s out of range", ErrMalformedSpec, spec, m[2])
	}
	return ParsedSpec{Name: m[1], Arity: arity, Body: m[3]}, nil
}
