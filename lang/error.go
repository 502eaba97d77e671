package lang

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the failures of lexing and parsing.
type ErrorKind uint8

const (
	// KindLex is returned for unrecognized input.
	KindLex ErrorKind = iota + 1
	// KindMissingArgument is returned when 'sin' has no frequency.
	KindMissingArgument
	// KindUnexpectedToken is returned for a token that cannot start an atom.
	KindUnexpectedToken
	// KindInvalidArgument is returned for a frequency that is not positive.
	KindInvalidArgument
)

// Sentinel errors, matched with errors.Is against *Error values.
var (
	ErrLex             = errors.New("lex error")
	ErrMissingArgument = errors.New("missing argument")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrInvalidArgument = errors.New("invalid argument")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindLex:
		return ErrLex
	case KindMissingArgument:
		return ErrMissingArgument
	case KindUnexpectedToken:
		return ErrUnexpectedToken
	case KindInvalidArgument:
		return ErrInvalidArgument
	}
	return nil
}

func (k ErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("error kind(%d)", uint8(k))
}

// Error describes a failure at a position of the source text. Err holds
// the underlying cause, if any.
type Error struct {
	Kind   ErrorKind
	Offset int
	Text   string
	Err    error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindLex:
		msg = fmt.Sprintf("%v at offset %d: unexpected %q", e.Kind, e.Offset, e.Text)
	case KindMissingArgument:
		msg = fmt.Sprintf("%v at offset %d: %q requires a frequency", e.Kind, e.Offset, e.Text)
	case KindInvalidArgument:
		msg = fmt.Sprintf("%v at offset %d: frequency %s must be positive", e.Kind, e.Offset, e.Text)
	default:
		msg = fmt.Sprintf("%v at offset %d: %q", e.Kind, e.Offset, e.Text)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of this error kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
