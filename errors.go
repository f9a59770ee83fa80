package bare

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Kind classifies a BAREWire failure. See §7 of the design: every fallible
// operation returns either a success value or an Error; nothing is ever
// silently swallowed or panics except for internal invariant violations.
type Kind int

const (
	// InvalidValue means an argument violated a precondition (bounds,
	// cardinality, schema state).
	InvalidValue Kind = iota
	// InvalidState means the platform/provider is not initialized, or a
	// view is operated on without its prerequisite region.
	InvalidState
	// Encoding means an encode failure (length mismatch, value-type
	// mismatch, invalid UTF-8).
	Encoding
	// Decoding means a decode failure (truncated, overlong varint, bad
	// tag, invalid UTF-8, bool not 0/1).
	Decoding
	// OutOfBounds means a region/buffer access fell outside the valid
	// range.
	OutOfBounds
	// SchemaMismatch means a received frame's schema id did not match the
	// expected one.
	SchemaMismatch
)

func (k Kind) String() string {
	switch k {
	case InvalidValue:
		return "invalid_value"
	case InvalidState:
		return "invalid_state"
	case Encoding:
		return "encoding"
	case Decoding:
		return "decoding"
	case OutOfBounds:
		return "out_of_bounds"
	case SchemaMismatch:
		return "schema_mismatch"
	default:
		return "unknown"
	}
}

// Error is the single error value used across BAREWire. It carries a Kind
// tag, a message, and an optional wrapped cause. Errors are never mutated
// or wrapped silently; higher layers annotate with xerrors.Errorf's %w verb
// rather than discarding the original cause.
type Error struct {
	Kind    Kind
	Message string
	Path    string
	cause   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause so that errors.Is/As and xerrors.Is/As
// traverse into it.
func (e *Error) Unwrap() error { return e.cause }

// NewError builds an Error of the given kind with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewErrorPath is NewError with a path annotation, used by the schema
// validator and typed view to report where in a structure a failure
// occurred (e.g. "Message.sender.friends.item.name").
func NewErrorPath(kind Kind, path, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Path: path}
}

// Wrap annotates an existing error with a Kind and additional context
// without discarding the original cause, using xerrors.Errorf so that the
// resulting chain supports xerrors.Is/As for callers that need to check
// against a wrapped context.Canceled or similar sentinel.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Kind:    kind,
		Message: msg,
		cause:   xerrors.Errorf("%s: %w", msg, cause),
	}
}

// Is reports whether err is a BAREWire Error of the given Kind.
func Is(err error, kind Kind) bool {
	var be *Error
	if xerrors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
