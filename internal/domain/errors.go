package domain

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when registering or updating to an email
	// another user already holds.
	ErrDuplicateEmail = errors.New("user with this email already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// that login failures do not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized indicates the operation requires an authenticated session.
	ErrUnauthorized = errors.New("you must be logged in to perform this action")
	// ErrForbidden indicates the session does not own the targeted record.
	ErrForbidden = errors.New("you can only modify your own products")
	// ErrCorrupted indicates a stored value could not be decoded.
	ErrCorrupted = errors.New("stored value is corrupted")
)

// ValidationError reports the first failing rule of an input check. Match
// with errors.As.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
