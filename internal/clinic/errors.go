package clinic

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Callers classify with
// errors.Is; the app boundary maps them to typed payloads.
var (
	// ErrNotFound means a lookup or mutation matched no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a unique key (e.g. email) is already taken.
	ErrConflict = errors.New("already exists")

	// ErrAuthFailed covers both unknown email and wrong password, so the
	// caller cannot tell which one applied.
	ErrAuthFailed = errors.New("invalid credentials")
)

// ValidationError reports a missing or malformed required field. It is
// returned before any store mutation is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// requireField returns a ValidationError when value is empty.
func requireField(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "required"}
	}
	return nil
}
