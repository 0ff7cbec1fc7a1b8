// Package alphabet defines the finite character set every string in a formal
// system must be drawn from.
package alphabet

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Default is the alphabet used when none is configured.
const Default = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-"

// ErrEmpty is returned when an alphabet would contain no characters.
var ErrEmpty = errors.New("alphabet cannot be empty")

// ErrViolation is returned when a string contains a character outside the alphabet.
var ErrViolation = errors.New("character not in alphabet")

// Alphabet is an immutable ordered set of unique characters.
type Alphabet struct {
	chars []rune
	set   map[rune]struct{}
}

// New builds an alphabet from chars, keeping first-occurrence order and
// dropping duplicates.
func New(chars string) (*Alphabet, error) {
	a := &Alphabet{set: make(map[rune]struct{})}
	for _, r := range chars {
		if _, ok := a.set[r]; ok {
			continue
		}
		a.set[r] = struct{}{}
		a.chars = append(a.chars, r)
	}
	if len(a.chars) == 0 {
		return nil, ErrEmpty
	}
	return a, nil
}

// NewSorted builds an alphabet whose characters are sorted, the way the
// s.<chars> setup argument defines one.
func NewSorted(chars string) (*Alphabet, error) {
	runes := []rune(chars)
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return New(string(runes))
}

// MustNew is like New but panics on error. Intended for constants and tests.
func MustNew(chars string) *Alphabet {
	a, err := New(chars)
	if err != nil {
		panic(err)
	}
	return a
}

// Contains reports whether r is in the alphabet.
func (a *Alphabet) Contains(r rune) bool {
	_, ok := a.set[r]
	return ok
}

// First returns the first character of the alphabet. Rule definitions are
// smoke-tested with placeholder arguments made of this character.
func (a *Alphabet) First() rune {
	return a.chars[0]
}

// Len returns the number of characters.
func (a *Alphabet) Len() int {
	return len(a.chars)
}

// Runes returns a copy of the characters in order.
func (a *Alphabet) Runes() []rune {
	out := make([]rune, len(a.chars))
	copy(out, a.chars)
	return out
}

// String returns the characters concatenated in order.
func (a *Alphabet) String() string {
	return string(a.chars)
}

// Check returns an error naming the first offending character of s, or nil
// when s consists only of alphabet characters.
func (a *Alphabet) Check(s string) error {
	for i, r := range s {
		if !a.Contains(r) {
			return &ViolationError{Char: r, Offset: i, Input: s}
		}
	}
	return nil
}

// ViolationError reports a character outside the alphabet.
type ViolationError struct {
	Char   rune
	Offset int
	Input  string
}

func (e *ViolationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "character %q not in alphabet", e.Char)
	if e.Input != "" {
		fmt.Fprintf(&b, " (in %q at offset %d)", e.Input, e.Offset)
	}
	return b.String()
}

func (e *ViolationError) Unwrap() error {
	return ErrViolation
}
