package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateUsername is returned when registering a taken username.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrAuthenticationFailed is returned for unknown users or bad passwords.
	ErrAuthenticationFailed = errors.New("invalid username or password")
	// ErrConstraintViolation is returned when storage rejects a write,
	// most commonly a query_id collision.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks caller input that was rejected before storage.
	ErrValidation = errors.New("validation failed")
)

// StorageError wraps connection and query failures from the persistent store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err unless it already carries a domain meaning.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConstraintViolation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateUsername) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err came from the persistent store.
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// ValidationError builds an ErrValidation-wrapping error.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
