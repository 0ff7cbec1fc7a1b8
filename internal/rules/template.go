package rules

import (
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/alphabet"
)

// Dialect selects which grammar variant rule bodies are compiled with. A run
// uses exactly one dialect.
type Dialect string

const (
	// DialectCompose supports [NAME] rule calls and no replace operator.
	DialectCompose Dialect = "compose"
	// DialectReplace supports the {from^to} operator and treats '[' as an
	// ordinary character.
	DialectReplace Dialect = "replace"
)

// Valid reports whether d names a known dialect.
func (d Dialect) Valid() bool {
	return d == DialectCompose || d == DialectReplace
}

// Template is a compiled rule body. It is immutable once compiled.
type Template struct {
	source string
	nodes  []Node
	alpha  *alphabet.Alphabet
}

// Source returns the body text the template was compiled from.
func (t *Template) Source() string {
	return t.source
}

// Nodes returns the top-level nodes of the template.
func (t *Template) Nodes() []Node {
	out := make([]Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Node is one element of a compiled template.
type Node interface {
	eval(st *evalState, args []string) (string, error)
}

// Literal emits an alphabet character verbatim.
type Literal struct {
	Char rune
}

// Escape emits the escaped character with the backslash removed.
type Escape struct {
	Char rune
}

// ArgRef emits argument Index, or nothing when the index is out of range.
type ArgRef struct {
	Index int
}

// ArgRefAll emits every argument concatenated in order.
type ArgRefAll struct{}

// RuleCall invokes another rule with the caller's arguments.
type RuleCall struct {
	Name string
}

// Group evaluates Inner and applies Op to the result.
type Group struct {
	Inner []Node
	Op    Operator
}

// Operator post-processes the expanded contents of a group.
type Operator interface {
	apply(s string) (string, error)
}

// Repeat emits the group contents Count times.
type Repeat struct {
	Count int
}

// Slice emits runes [Start, End) of the group contents, clamped to its length.
type Slice struct {
	Start int
	End   int
}

// Replace emits the group contents with every From replaced by To.
type Replace struct {
	From string
	To   string
}
