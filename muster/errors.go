/*
errors.go - Error taxonomy for the muster domain

PURPOSE:
  Sentinel errors plus one structured type, following the same pattern as
  everything else in this codebase: match with errors.Is/errors.As, wrap
  with %w when crossing layers.

CATEGORIES:
  Validation - malformed or incomplete input, safe to report verbatim
  NotFound   - referenced report/person/user absent, no side effects
  Storage    - the underlying store failed; surfaced as a generic 500,
               never retried automatically

  Auth, authorization and lockout errors live in the session package.
*/
package muster

import (
	"errors"
	"fmt"
)

var (
	// ErrReportNotFound is returned when a referenced report does not exist
	// in either active or archive storage.
	ErrReportNotFound = errors.New("report not found")

	// ErrPersonNotFound is returned when a referenced person is absent.
	ErrPersonNotFound = errors.New("person not found")

	// ErrUserNotFound is returned when a referenced user account is absent.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a user whose username is taken.
	ErrUserExists = errors.New("username already exists")

	// ErrProtectedUser is returned when deleting the primary admin account.
	ErrProtectedUser = errors.New("cannot delete the primary admin account")
)

// ValidationError reports missing or malformed payload fields. The message
// is specific and safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps a store failure. The wrapped error is for logs only;
// callers see a generic message.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }
