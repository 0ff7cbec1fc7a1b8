// Package query filters derived theorems with CEL predicates such as
// `depth <= 2 && value.startsWith("ab")`.
package query

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/google/cel-go/cel"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/theorem"
)

// MaxCacheSize is the maximum number of compiled predicates kept.
const MaxCacheSize = 64

// Compiler compiles predicates over the variables value (string),
// depth (int) and length (int, in characters).
type Compiler struct {
	env *cel.Env

	mu         sync.Mutex
	cache      map[string]*Predicate
	cacheOrder []string
}

// NewCompiler creates a compiler with the theorem environment.
func NewCompiler() (*Compiler, error) {
	env, err := cel.NewEnv(
		cel.Variable("value", cel.StringType),
		cel.Variable("depth", cel.IntType),
		cel.Variable("length", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("CEL environment error: %w", err)
	}
	return &Compiler{
		env:        env,
		cache:      make(map[string]*Predicate),
		cacheOrder: make([]string, 0, MaxCacheSize),
	}, nil
}

// Compile compiles expr into a predicate. expr must evaluate to a bool.
// Compiled predicates are cached by source text.
func (c *Compiler) Compile(expr string) (*Predicate, error) {
	c.mu.Lock()
	if p, ok := c.cache[expr]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("CEL expression must be boolean, got %s", ast.OutputType())
	}
	prg, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program creation error: %w", err)
	}
	p := &Predicate{expr: expr, prg: prg}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cache[expr]; !ok {
		if len(c.cacheOrder) >= MaxCacheSize {
			oldest := c.cacheOrder[0]
			c.cacheOrder = c.cacheOrder[1:]
			delete(c.cache, oldest)
		}
		c.cache[expr] = p
		c.cacheOrder = append(c.cacheOrder, expr)
	}
	return p, nil
}

// Predicate is a compiled boolean expression over a theorem.
type Predicate struct {
	expr string
	prg  cel.Program
}

// String returns the source expression.
func (p *Predicate) String() string { return p.expr }

// Match evaluates the predicate against t. A nil predicate matches all.
func (p *Predicate) Match(t theorem.Theorem) (bool, error) {
	if p == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(map[string]any{
		"value":  t.Value,
		"depth":  int64(t.Depth),
		"length": int64(utf8.RuneCountInString(t.Value)),
	})
	if err != nil {
		return false, fmt.Errorf("evaluating %q on %q: %w", p.expr, t.Value, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL result is not boolean: %T", out.Value())
	}
	return result, nil
}

// Filter returns the theorems matching p, preserving order.
func (p *Predicate) Filter(ts []theorem.Theorem) ([]theorem.Theorem, error) {
	if p == nil {
		return ts, nil
	}
	out := make([]theorem.Theorem, 0, len(ts))
	for _, t := range ts {
		ok, err := p.Match(t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}
