package rules

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, chars string) *Registry {
	t.Helper()
	return NewRegistry(newCompiler(t, chars, DialectCompose), nil)
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    ParsedSpec
		wantErr bool
	}{
		{"simple", "cat.2->${0}${1}", ParsedSpec{Name: "cat", Arity: 2, Body: "${0}${1}"}, false},
		{"underscore name", "_r1.0->a", ParsedSpec{Name: "_r1", Arity: 0, Body: "a"}, false},
		{"empty body", "nil.1->", ParsedSpec{Name: "nil", Arity: 1, Body: ""}, false},
		{"body with arrow", "r.1->a->b", ParsedSpec{Name: "r", Arity: 1, Body: "a->b"}, false},
		{"missing arrow", "cat.2=${0}", ParsedSpec{}, true},
		{"missing arity", "cat->a", ParsedSpec{}, true},
		{"negative arity", "cat.-1->a", ParsedSpec{}, true},
		{"name starts with digit", "1cat.1->a", ParsedSpec{}, true},
		{"empty", "", ParsedSpec{}, true},
		{"arity overflow", "r.99999999999999999999->a", ParsedSpec{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpec(tt.spec)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedSpec)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_Define(t *testing.T) {
	reg := newRegistry(t, "ab")

	rule, err := reg.Define("swap.2->${1}${0}", []string{"a+", ""})
	require.NoError(t, err)

	assert.Equal(t, "swap", rule.Name)
	assert.Equal(t, 2, rule.Arity)
	require.Len(t, rule.Filters, 2)
	assert.Equal(t, "a+", rule.Filters[0].Pattern)
	assert.True(t, rule.Filters[1].IsMatchAll())
	assert.Empty(t, rule.FilterWarnings)

	got, ok := reg.Lookup("swap")
	require.True(t, ok)
	assert.Same(t, rule, got)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Define_Errors(t *testing.T) {
	reg := newRegistry(t, "ab")
	_, err := reg.Define("r.1->a", nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		spec string
		kind error
	}{
		{"malformed", "r1->a", ErrMalformedSpec},
		{"duplicate", "r.2->b", ErrDuplicateName},
		{"alphabet violation", "bad.1->ac", ErrAlphabetViolation},
		{"unterminated group", "bad.1->(a", ErrUnterminatedGroup},
		{"invalid operator", "bad.1->(a){x}", ErrInvalidOperator},
		{"self recursion", "loop.1->a[loop]", ErrRecursiveCall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Define(tt.spec, nil)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	// Nothing but the first rule made it in.
	assert.Equal(t, 1, reg.Len())
	_, ok := reg.Lookup("bad")
	assert.False(t, ok)
	_, ok = reg.Lookup("loop")
	assert.False(t, ok)
}

func TestRegistry_Define_RejectedRuleStaysUndefined(t *testing.T) {
	reg := newRegistry(t, "01")

	_, err := reg.Define("bad.1->0x", nil)
	require.ErrorIs(t, err, ErrAlphabetViolation)

	_, err = reg.Run("bad", []string{"0"}, false)
	assert.ErrorIs(t, err, ErrUndefinedRule)
}

func TestRegistry_Define_MutualRecursionRejected(t *testing.T) {
	reg := newRegistry(t, "ab")

	// ping is accepted: pong is undefined and contributes nothing.
	_, err := reg.Define("ping.1->a[pong]", nil)
	require.NoError(t, err)

	_, err = reg.Define("pong.1->b[ping]", nil)
	assert.ErrorIs(t, err, ErrRecursiveCall)
	assert.Contains(t, err.Error(), "pong -> ping -> pong")

	out, err := reg.Run("ping", []string{"a"}, false)
	require.NoError(t, err)
	assert.Equal(t, "a", out)
}

func TestRegistry_Define_InvalidFilterKeepsDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))
	reg := NewRegistry(newCompiler(t, "ab", DialectCompose), logger)

	rule, err := reg.Define("r.2->${0}", []string{"(a", "b*"})
	require.NoError(t, err)

	assert.True(t, rule.Filters[0].IsMatchAll())
	assert.Equal(t, "b*", rule.Filters[1].Pattern)
	require.Len(t, rule.FilterWarnings, 1)
	assert.ErrorIs(t, rule.FilterWarnings[0], ErrInvalidFilterRegex)
	assert.Contains(t, buf.String(), "Filter reverted to match-all")
}

func TestRegistry_Define_ExtraFiltersIgnored(t *testing.T) {
	reg := newRegistry(t, "ab")

	rule, err := reg.Define("r.1->${0}", []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, rule.Filters, 1)
	assert.Len(t, rule.FilterWarnings, 1)
}

func TestRegistry_Run(t *testing.T) {
	reg := newRegistry(t, "01")
	_, err := reg.Define("flip.1->1", []string{"^0$"})
	require.NoError(t, err)

	out, err := reg.Run("flip", []string{"0"}, true)
	require.NoError(t, err)
	assert.Equal(t, "1", out)

	_, err = reg.Run("flip", []string{"1"}, true)
	assert.ErrorIs(t, err, ErrFilterRejected)

	out, err = reg.Run("flip", []string{"1"}, false)
	require.NoError(t, err)
	assert.Equal(t, "1", out)

	_, err = reg.Run("flip", []string{"0", "0"}, false)
	assert.ErrorIs(t, err, ErrArityMismatch)

	_, err = reg.Run("flip", nil, false)
	assert.ErrorIs(t, err, ErrArityMismatch)

	_, err = reg.Run("nope", nil, false)
	assert.ErrorIs(t, err, ErrUndefinedRule)
}

func TestRuleCall_TruncatesAndPads(t *testing.T) {
	reg := newRegistry(t, "abc")

	_, err := reg.Define("first.1->${0}", nil)
	require.NoError(t, err)
	_, err = reg.Define("pair.2->${0}c${1}", nil)
	require.NoError(t, err)
	// Three arguments reach first (arity 1) truncated to one.
	_, err = reg.Define("three.3->[first]", nil)
	require.NoError(t, err)
	// One argument cannot satisfy pair (arity 2): the call yields nothing.
	_, err = reg.Define("one.1->a[pair]b", nil)
	require.NoError(t, err)
	// Undefined callee yields nothing.
	_, err = reg.Define("ghost.1->a[missing]", nil)
	require.NoError(t, err)

	out, err := reg.Run("three", []string{"ab", "b", "c"}, false)
	require.NoError(t, err)
	assert.Equal(t, "ab", out)

	out, err = reg.Run("one", []string{"c"}, false)
	require.NoError(t, err)
	assert.Equal(t, "ab", out)

	out, err = reg.Run("ghost", []string{"c"}, false)
	require.NoError(t, err)
	assert.Equal(t, "a", out)

	// Direct invocation of the same mismatch is rejected.
	_, err = reg.Run("pair", []string{"c"}, false)
	assert.ErrorIs(t, err, ErrArityMismatch)
}

func TestRuleCall_IgnoresCalleeFilters(t *testing.T) {
	reg := newRegistry(t, "ab")

	_, err := reg.Define("onlyb.1->${0}${0}", []string{"b"})
	require.NoError(t, err)
	_, err = reg.Define("wrap.1->[onlyb]", nil)
	require.NoError(t, err)

	out, err := reg.Run("wrap", []string{"a"}, true)
	require.NoError(t, err)
	assert.Equal(t, "aa", out)
}

func TestFilter_FullMatch(t *testing.T) {
	f, err := NewFilter("ab")
	require.NoError(t, err)

	assert.True(t, f.Match("ab"))
	assert.False(t, f.Match("abb"))
	assert.False(t, f.Match("aab"))

	f, err = NewFilter("a|b")
	require.NoError(t, err)
	assert.True(t, f.Match("a"))
	assert.True(t, f.Match("b"))
	assert.False(t, f.Match("ab"))

	// Backreferences are supported.
	f, err = NewFilter(`(a+)b\1`)
	require.NoError(t, err)
	assert.True(t, f.Match("aabaa"))
	assert.False(t, f.Match("aaba"))

	all, err := NewFilter("")
	require.NoError(t, err)
	assert.True(t, all.IsMatchAll())
	assert.True(t, all.Match("anything"))
}
