package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/alphabet"
)

var (
	repeatOperatorRegex = regexp.MustCompile(`^[0-9]+$`)
	sliceOperatorRegex  = regexp.MustCompile(`^([0-9]+):([0-9]+)$`)
	identifierRegex     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Compiler turns rule bodies into templates for one alphabet and dialect.
type Compiler struct {
	alpha   *alphabet.Alphabet
	dialect Dialect
}

// NewCompiler creates a compiler. An empty dialect means DialectCompose.
func NewCompiler(alpha *alphabet.Alphabet, dialect Dialect) (*Compiler, error) {
	if alpha == nil {
		return nil, fmt.Errorf("alphabet cannot be nil")
	}
	if dialect == "" {
		dialect = DialectCompose
	}
	if !dialect.Valid() {
		return nil, fmt.Errorf("unknown grammar dialect %q", dialect)
	}
	return &Compiler{alpha: alpha, dialect: dialect}, nil
}

// Alphabet returns the alphabet the compiler validates against.
func (c *Compiler) Alphabet() *alphabet.Alphabet {
	return c.alpha
}

// Dialect returns the grammar dialect.
func (c *Compiler) Dialect() Dialect {
	return c.dialect
}

// Compile parses body into a template.
func (c *Compiler) Compile(body string) (*Template, error) {
	p := &parser{src: body, alpha: c.alpha, dialect: c.dialect}
	nodes, err := p.parseSeq(false)
	if err != nil {
		return nil, err
	}
	return &Template{source: body, nodes: nodes, alpha: c.alpha}, nil
}

type parser struct {
	src     string
	pos     int
	alpha   *alphabet.Alphabet
	dialect Dialect
}

func (p *parser) errorf(kind error, offset int, format string, args ...any) error {
	return &SyntaxError{
		Kind:     kind,
		Offset:   offset,
		Fragment: fragmentAt(p.src, offset),
		Detail:   fmt.Sprintf(format, args...),
	}
}

// parseSeq parses nodes until end of input or, inside a group, until the
// closing ')' which is left for the caller.
func (p *parser) parseSeq(inGroup bool) ([]Node, error) {
	var nodes []Node
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		var (
			node Node
			err  error
		)
		switch {
		case r == '$':
			node, err = p.parseArgRef()
		case r == '(':
			node, err = p.parseGroup()
		case r == ')':
			if inGroup {
				return nodes, nil
			}
			return nil, p.errorf(ErrUnexpectedClose, p.pos, "")
		case r == '\\':
			node, err = p.parseEscape()
		case r == '[' && p.dialect == DialectCompose:
			node, err = p.parseRuleCall()
		default:
			if !p.alpha.Contains(r) {
				return nil, p.errorf(ErrAlphabetViolation, p.pos, "rule cannot add character %q", r)
			}
			node = Literal{Char: r}
			p.pos += size
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (p *parser) parseEscape() (Node, error) {
	start := p.pos
	p.pos++ // '\'
	if p.pos >= len(p.src) {
		return nil, p.errorf(ErrDanglingEscape, start, "")
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	if !p.alpha.Contains(r) {
		return nil, p.errorf(ErrAlphabetViolation, start, "escaped character %q", r)
	}
	p.pos += size
	return Escape{Char: r}, nil
}

func (p *parser) parseArgRef() (Node, error) {
	start := p.pos
	rest := p.src[p.pos+1:]
	if !strings.HasPrefix(rest, "{") {
		return nil, p.errorf(ErrInvalidArgRef, start, "expected ${n} or ${.}")
	}
	end := strings.IndexByte(rest, '}')
	if end < 0 {
		return nil, p.errorf(ErrInvalidArgRef, start, "unterminated argument reference")
	}
	inner := rest[1:end]
	p.pos += 1 + end + 1

	if inner == "." {
		return ArgRefAll{}, nil
	}
	if !repeatOperatorRegex.MatchString(inner) {
		return nil, p.errorf(ErrInvalidArgRef, start, "argument index %q is not a number", inner)
	}
	idx, err := strconv.Atoi(inner)
	if err != nil {
		return nil, p.errorf(ErrInvalidArgRef, start, "argument index %q out of range", inner)
	}
	return ArgRef{Index: idx}, nil
}

func (p *parser) parseRuleCall() (Node, error) {
	start := p.pos
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return nil, p.errorf(ErrInvalidRuleCall, start, "missing ']'")
	}
	name := p.src[p.pos+1 : p.pos+end]
	if !identifierRegex.MatchString(name) {
		return nil, p.errorf(ErrInvalidRuleCall, start, "%q is not a rule name", name)
	}
	p.pos += end + 1
	return RuleCall{Name: name}, nil
}

func (p *parser) parseGroup() (Node, error) {
	start := p.pos
	p.pos++ // '('
	inner, err := p.parseSeq(true)
	if err != nil {
		return nil, err
	}
	if p.pos >= len(p.src) {
		return nil, p.errorf(ErrUnterminatedGroup, start, "")
	}
	p.pos++ // ')'

	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}
	return Group{Inner: inner, Op: op}, nil
}

func (p *parser) parseOperator() (Operator, error) {
	start := p.pos
	rest := p.src[p.pos:]
	if !strings.HasPrefix(rest, "{") {
		return nil, p.errorf(ErrInvalidOperator, start, "missing operator after ')'")
	}
	end := strings.IndexByte(rest, '}')
	if end < 0 {
		return nil, p.errorf(ErrInvalidOperator, start, "unterminated operator")
	}
	content := rest[1:end]
	p.pos += end + 1

	if strings.ContainsRune(content, '{') {
		return nil, p.errorf(ErrInvalidOperator, start, "operator %q", content)
	}

	if repeatOperatorRegex.MatchString(content) {
		n, err := strconv.Atoi(content)
		if err != nil {
			return nil, p.errorf(ErrInvalidOperator, start, "repeat count %q out of range", content)
		}
		return Repeat{Count: n}, nil
	}

	if m := sliceOperatorRegex.FindStringSubmatch(content); m != nil {
		a, errA := strconv.Atoi(m[1])
		b, errB := strconv.Atoi(m[2])
		if errA != nil || errB != nil {
			return nil, p.errorf(ErrInvalidOperator, start, "slice bounds %q out of range", content)
		}
		return Slice{Start: a, End: b}, nil
	}

	if i := strings.IndexByte(content, '^'); i >= 0 {
		if p.dialect != DialectReplace {
			return nil, p.errorf(ErrInvalidOperator, start, "replace operator %q requires the replace dialect", content)
		}
		from, to := content[:i], content[i+1:]
		if strings.ContainsAny(content, `\$`) {
			return nil, p.errorf(ErrInvalidOperator, start, "replace operands are not expanded, %q contains escape syntax", content)
		}
		for _, operand := range []string{from, to} {
			if err := p.alpha.Check(operand); err != nil {
				return nil, p.errorf(ErrAlphabetViolation, start, "replace operand: %v", err)
			}
		}
		return Replace{From: from, To: to}, nil
	}

	return nil, p.errorf(ErrInvalidOperator, start, "operator %q", content)
}
