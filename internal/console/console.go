// Package console renders search results, rules and errors for the
// terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/rules"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/search"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/theorem"
)

// Palette
var (
	ColorAccent  = lipgloss.Color("#20B9B4")
	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#5C7A84")
)

// Icon is a status marker.
type Icon string

const (
	IconFound   Icon = "✓"
	IconMissing Icon = "✗"
	IconWarning Icon = "⚠"
	IconArrow   Icon = "→"
)

type styles struct {
	title   lipgloss.Style
	name    lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	value   lipgloss.Style
}

// Printer writes styled output to one writer. Colors are used only when the
// writer is a terminal that supports them.
type Printer struct {
	w io.Writer
	s styles
}

// NewPrinter creates a printer for w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w: w,
		s: styles{
			title:   r.NewStyle().Bold(true).Foreground(ColorAccent),
			name:    r.NewStyle().Bold(true),
			muted:   r.NewStyle().Foreground(ColorMuted),
			success: r.NewStyle().Foreground(ColorSuccess),
			warning: r.NewStyle().Foreground(ColorWarning),
			err:     r.NewStyle().Bold(true).Foreground(ColorError),
			value:   r.NewStyle().Foreground(ColorSuccess).Bold(true),
		},
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

func (p *Printer) println(parts ...string) {
	fmt.Fprintln(p.w, strings.Join(parts, " "))
}

// Pair formats a theorem as (value, depth).
func (p *Printer) Pair(t theorem.Theorem) string {
	return fmt.Sprintf("(%s, %d)", p.s.value.Render(quote(t.Value)), t.Depth)
}

// Targets prints one line per requested target.
func (p *Printer) Targets(res *search.Result) {
	for _, t := range res.Targets {
		if t.Found {
			p.println(p.s.success.Render(string(IconFound)), p.Pair(theorem.Theorem{Value: t.Target, Depth: t.Depth}))
			continue
		}
		p.println(p.s.err.Render(string(IconMissing)),
			fmt.Sprintf("%s not found within depth %d", quote(t.Target), res.MaxDepth))
	}
}

// Theorems prints one (value, depth) pair per line.
func (p *Printer) Theorems(ts []theorem.Theorem) {
	for _, t := range ts {
		p.println(p.Pair(t))
	}
	p.println(p.s.muted.Render(fmt.Sprintf("%d theorem%s", len(ts), plural(len(ts)))))
}

// Summary prints the run statistics.
func (p *Printer) Summary(res *search.Result) {
	p.println(p.s.muted.Render(fmt.Sprintf("run %s: %d iteration%s, %d evaluation%s, explored to depth %d in %s",
		res.RunID,
		res.Iterations, plural(res.Iterations),
		res.Evaluations, plural(res.Evaluations),
		res.Searched, res.Elapsed.Round(time.Microsecond),
	)))
}

// Rules prints every rule with its filters and body.
func (p *Printer) Rules(rs []*rules.Rule) {
	if len(rs) == 0 {
		p.println(p.s.muted.Render("no rules defined"))
		return
	}
	for _, r := range rs {
		filters := make([]string, len(r.Filters))
		for i, f := range r.Filters {
			filters[i] = f.Pattern
		}
		head := p.s.name.Render(fmt.Sprintf("%s.%d", r.Name, r.Arity))
		p.println(head, p.s.muted.Render(string(IconArrow)), r.Body.Source())
		if len(filters) > 0 {
			p.println("   ", p.s.muted.Render("filters: "+strings.Join(filters, ", ")))
		}
	}
}

// Status describes the engine's bounds and progress.
type Status struct {
	Alphabet  string
	Dialect   string
	Axioms    int
	Rules     int
	Theorems  int
	Searched  int
	MaxDepth  int
	MaxLength int
}

// Status prints s as aligned key/value lines.
func (p *Printer) Status(s Status) {
	rows := [][2]string{
		{"alphabet", s.Alphabet},
		{"dialect", s.Dialect},
		{"axioms", fmt.Sprint(s.Axioms)},
		{"rules", fmt.Sprint(s.Rules)},
		{"theorems", fmt.Sprint(s.Theorems)},
		{"searched", fmt.Sprintf("%d of %d", s.Searched, s.MaxDepth)},
		{"max length", fmt.Sprint(s.MaxLength)},
	}
	key := p.s.title.Width(11)
	for _, row := range rows {
		p.println(key.Render(row[0]), row[1])
	}
}

// Value prints a labelled value, such as a search bound.
func (p *Printer) Value(label string, v any) {
	p.println(p.s.title.Render(label+":"), fmt.Sprint(v))
}

// Error prints err.
func (p *Printer) Error(err error) {
	p.println(p.s.err.Render(string(IconMissing)+" error:"), err.Error())
}

// Warning prints a warning line.
func (p *Printer) Warning(msg string) {
	p.println(p.s.warning.Render(string(IconWarning)), msg)
}

// Info prints a plain line.
func (p *Printer) Info(msg string) {
	p.println(msg)
}

func quote(s string) string {
	return "'" + s + "'"
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
