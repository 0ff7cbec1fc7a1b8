package rules

import (
	"fmt"
	"strings"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/alphabet"
)

// MaxOutputBytes bounds every intermediate string produced while evaluating
// a template.
const MaxOutputBytes = 1 << 20

// Resolver looks up rules for RuleCall nodes.
type Resolver interface {
	Lookup(name string) (*Rule, bool)
}

type evalState struct {
	resolver Resolver
	alpha    *alphabet.Alphabet
	stack    []string
}

// Evaluate expands the template against args. Rule calls are resolved with
// resolver, which may be nil when the template contains none.
func (t *Template) Evaluate(args []string, resolver Resolver) (string, error) {
	st := &evalState{resolver: resolver, alpha: t.alpha}
	return st.evalSeq(t.nodes, args)
}

func (st *evalState) evalSeq(nodes []Node, args []string) (string, error) {
	var b strings.Builder
	for _, n := range nodes {
		s, err := n.eval(st, args)
		if err != nil {
			return "", err
		}
		if b.Len()+len(s) > MaxOutputBytes {
			return "", st.inRule(fmt.Errorf("%w: concatenation reaches %d bytes, limit is %d", ErrOutputLimit, b.Len()+len(s), MaxOutputBytes))
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// call evaluates rule r's body with args, guarding against call cycles.
func (st *evalState) call(r *Rule, args []string) (string, error) {
	for _, name := range st.stack {
		if name == r.Name {
			return "", fmt.Errorf("%w: %s -> %s", ErrRecursiveCall, strings.Join(st.stack, " -> "), r.Name)
		}
	}
	st.stack = append(st.stack, r.Name)
	prev := st.alpha
	st.alpha = r.Body.alpha
	defer func() {
		st.stack = st.stack[:len(st.stack)-1]
		st.alpha = prev
	}()
	return st.evalSeq(r.Body.nodes, args)
}

// inRule names the rule being evaluated in err.
func (st *evalState) inRule(err error) error {
	if len(st.stack) == 0 {
		return err
	}
	return fmt.Errorf("rule %q: %w", st.stack[len(st.stack)-1], err)
}

func (n Literal) eval(st *evalState, _ []string) (string, error) {
	if !st.alpha.Contains(n.Char) {
		return "", &alphabet.ViolationError{Char: n.Char}
	}
	return string(n.Char), nil
}

func (n Escape) eval(st *evalState, _ []string) (string, error) {
	if !st.alpha.Contains(n.Char) {
		return "", &alphabet.ViolationError{Char: n.Char}
	}
	return string(n.Char), nil
}

func (n ArgRef) eval(_ *evalState, args []string) (string, error) {
	if n.Index < len(args) {
		return args[n.Index], nil
	}
	return "", nil
}

func (ArgRefAll) eval(_ *evalState, args []string) (string, error) {
	return strings.Join(args, ""), nil
}

// eval runs the callee with the caller's arguments truncated to its arity.
// An undefined callee, or a caller with too few arguments, contributes
// nothing.
func (n RuleCall) eval(st *evalState, args []string) (string, error) {
	if st.resolver == nil {
		return "", nil
	}
	callee, ok := st.resolver.Lookup(n.Name)
	if !ok || len(args) < callee.Arity {
		return "", nil
	}
	return st.call(callee, args[:callee.Arity])
}

func (n Group) eval(st *evalState, args []string) (string, error) {
	inner, err := st.evalSeq(n.Inner, args)
	if err != nil {
		return "", err
	}
	out, err := n.Op.apply(inner)
	if err != nil {
		return "", st.inRule(err)
	}
	return out, nil
}

func (op Repeat) apply(s string) (string, error) {
	if op.Count == 0 || s == "" {
		return "", nil
	}
	if len(s) > MaxOutputBytes/op.Count {
		return "", fmt.Errorf("%w: repeating %d bytes %d times exceeds %d bytes", ErrOutputLimit, len(s), op.Count, MaxOutputBytes)
	}
	return strings.Repeat(s, op.Count), nil
}

func (op Slice) apply(s string) (string, error) {
	runes := []rune(s)
	start, end := op.Start, op.End
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return "", nil
	}
	return string(runes[start:end]), nil
}

func (op Replace) apply(s string) (string, error) {
	out := strings.ReplaceAll(s, op.From, op.To)
	if len(out) > MaxOutputBytes {
		return "", fmt.Errorf("%w: replacing %q with %q produces %d bytes, limit is %d", ErrOutputLimit, op.From, op.To, len(out), MaxOutputBytes)
	}
	return out, nil
}
