// Package prompt asks the user for rule argument filters and reads REPL
// input lines.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/console"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/rules"
)

// Prompter reads answers line by line from one input. The REPL and the
// filter prompt share a Prompter so neither loses buffered input.
type Prompter struct {
	in  *bufio.Reader
	out *console.Printer
}

// New creates a prompter reading from in and writing questions to out.
func New(in io.Reader, out *console.Printer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// ReadLine writes prompt and returns the next input line without its line
// ending. io.EOF is returned once input is exhausted and no partial line
// remains.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(p.out.Writer(), prompt)
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Confirm asks a yes/no question until it gets an answer.
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		answer, err := p.ReadLine(question + " (y/n) ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// Filters asks, for each argument of a rule, whether to restrict it with a
// regular expression. Invalid patterns are reported and asked again.
// Arguments without a filter get rules.MatchAll.
func (p *Prompter) Filters(ruleName string, arity int) ([]string, error) {
	filters := make([]string, arity)
	for i := range filters {
		filters[i] = rules.MatchAll
		for {
			yes, err := p.Confirm(fmt.Sprintf("Specify a regex filter on argument (%d) of rule %q?", i, ruleName))
			if err != nil {
				return nil, err
			}
			if !yes {
				break
			}
			pattern, err := p.ReadLine("Enter regex: ")
			if err != nil {
				return nil, err
			}
			if _, err := rules.NewFilter(pattern); err != nil {
				p.out.Error(fmt.Errorf("invalid regex: %w", err))
				continue
			}
			filters[i] = pattern
			break
		}
	}
	return filters, nil
}
