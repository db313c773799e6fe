package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrContractViolation marks a write the caller should never have attempted,
	// such as a prediction on a match that already kicked off
	ErrContractViolation = errors.New("contract violation")

	// ErrDuplicateGroupName is returned when a group name is already taken
	ErrDuplicateGroupName = errors.New("a group with this name already exists")

	// ErrInvalidCredentials is returned by login for an unknown user or wrong password
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrForbidden is returned when the caller lacks the group role an action needs
	ErrForbidden = errors.New("forbidden")

	// ErrJoinCodeExhausted is returned when every join code attempt collided
	ErrJoinCodeExhausted = errors.New("could not generate a unique join code")
)

// ValidationError reports bad user input on a single field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
