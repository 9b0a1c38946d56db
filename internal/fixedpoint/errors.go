package fixedpoint

import (
	"errors"
	"fmt"
)

// Constraint violations. Every arithmetic entry point fails with a *ConstraintError
// wrapping exactly one of these.
var (
	ErrMalformed       = errors.New("malformed number")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrInvalidDecimals = errors.New("decimals out of range")
	ErrInvalidRate     = errors.New("conversion rate must be a positive decimal")
	ErrPrecision       = errors.New("value exceeds supported precision")
)

// ConstraintError reports an arithmetic input that cannot be processed. These are
// never clamped: the operation that hit one is aborted.
type ConstraintError struct {
	Op     string
	Err    error
	Detail string
}

func (e *ConstraintError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Detail)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

func violation(op string, err error, format string, args ...any) *ConstraintError {
	return &ConstraintError{Op: op, Err: err, Detail: fmt.Sprintf(format, args...)}
}
