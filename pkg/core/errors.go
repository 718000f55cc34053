package core

import (
	"errors"
	"fmt"

	"github.com/liliang-cn/docmirror/internal/encoding"
)

// Common errors
var (
	// ErrStoreClosed is returned when trying to use a closed store
	ErrStoreClosed = errors.New("store is closed")

	// ErrNilDocument is returned when a nil document state is passed to Add
	ErrNilDocument = errors.New("nil document")

	// ErrCorrupt is returned when a stored record or key fails to decode.
	// It signals a storage-integrity defect, not a transient condition, and
	// is never retried.
	ErrCorrupt = encoding.ErrCorrupt
)

// StoreError wraps errors with operation context
type StoreError struct {
	Op  string // Operation name
	Err error  // Underlying error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("docmirror: %v", e.Err)
	}
	return fmt.Sprintf("docmirror: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapError wraps an error with operation context
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
