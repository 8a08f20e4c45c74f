package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPaymentRequired marks content behind the unlock gate.
	ErrPaymentRequired = errors.New("payment required")
	// ErrConflict marks duplicates and limit violations.
	ErrConflict = errors.New("conflict")
)

// Validation is a user-facing, localized failure. It wraps Kind, or
// ErrInvalidArgument when Kind is nil, so callers can branch with errors.Is.
type Validation struct {
	Message string
	Kind    error
}

func (v *Validation) Error() string { return v.Message }

func (v *Validation) Unwrap() error {
	if v.Kind != nil {
		return v.Kind
	}
	return ErrInvalidArgument
}

func Invalid(msg string) error { return &Validation{Message: msg} }

func Conflict(msg string) error { return &Validation{Message: msg, Kind: ErrConflict} }

func Unauthorized(msg string) error { return &Validation{Message: msg, Kind: ErrUnauthorized} }
