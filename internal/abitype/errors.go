package abitype

import "fmt"

// ErrorKind names the constraint a user value violated.
type ErrorKind int

const (
	// ErrShape means the text does not have the form the type requires.
	ErrShape ErrorKind = iota + 1
	// ErrLength means a fixed element or byte count was not met.
	ErrLength
	// ErrRange means a numeric value is outside the type's bounds.
	ErrRange
	// ErrHex means the text contains non-hex characters where hex is required.
	ErrHex
)

func (k ErrorKind) String() string {
	switch k {
	case ErrShape:
		return "invalid format"
	case ErrLength:
		return "wrong length"
	case ErrRange:
		return "out of range"
	case ErrHex:
		return "invalid hex"
	default:
		return "invalid value"
	}
}

// ValidationError reports user input that does not satisfy a type. It is always
// recoverable and meant to be shown to whoever typed the value.
type ValidationError struct {
	Kind   ErrorKind
	Type   string
	Input  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s for %s", e.Kind, e.Input, e.Type)
	}
	return fmt.Sprintf("%s for %s: %s", e.Kind, e.Type, e.Detail)
}

// Is matches another *ValidationError with the same kind, so callers can write
// errors.Is(err, &ValidationError{Kind: ErrRange}).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// TypeError reports a type string the grammar does not recognise.
type TypeError struct {
	Type   string
	Detail string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("invalid type %q: %s", e.Type, e.Detail)
}

func invalid(kind ErrorKind, t Type, input, format string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:   kind,
		Type:   t.String(),
		Input:  input,
		Detail: fmt.Sprintf(format, args...),
	}
}
