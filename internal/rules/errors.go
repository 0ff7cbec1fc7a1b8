package rules

import (
	"errors"
	"fmt"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/alphabet"
)

// Definition-time errors. A rule failing with any of these is not registered.
var (
	ErrMalformedSpec      = errors.New("malformed rule definition")
	ErrDuplicateName      = errors.New("rule already exists")
	ErrUnterminatedGroup  = errors.New("capture group not closed")
	ErrUnexpectedClose    = errors.New("unexpected ')' outside capture group")
	ErrInvalidOperator    = errors.New("capture group not equipped with valid operator")
	ErrInvalidArgRef      = errors.New("invalid argument reference")
	ErrInvalidRuleCall    = errors.New("invalid rule call")
	ErrDanglingEscape     = errors.New("escape at end of rule body")
	ErrInvalidFilterRegex = errors.New("invalid argument filter regex")
)

// ErrAlphabetViolation is alphabet.ErrViolation, re-exported so callers of
// this package can match it without importing alphabet.
var ErrAlphabetViolation = alphabet.ErrViolation

// Invocation and evaluation errors.
var (
	ErrUndefinedRule  = errors.New("undefined rule")
	ErrArityMismatch  = errors.New("conflicting argument numbers")
	ErrFilterRejected = errors.New("argument does not satisfy filter")
	ErrRecursiveCall  = errors.New("recursive rule call")
	ErrOutputLimit    = errors.New("rule output exceeds limit")
)

// SyntaxError describes a rule body that failed to compile. It unwraps to
// one of the sentinel errors above.
type SyntaxError struct {
	Kind     error
	Offset   int
	Fragment string
	Detail   string
}

func (e *SyntaxError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("%s (offset %d, near %q)", msg, e.Offset, e.Fragment)
}

func (e *SyntaxError) Unwrap() error {
	return e.Kind
}

// fragmentAt returns a short excerpt of src starting at offset, for error
// messages.
func fragmentAt(src string, offset int) string {
	const width = 12
	if offset >= len(src) {
		return ""
	}
	end := offset + width
	if end > len(src) {
		end = len(src)
	}
	return src[offset:end]
}
