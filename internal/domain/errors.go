// Package domain contains domain models and business logic errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidationFailed is returned when a request fails local
	// validation. It never results in a backend call.
	ErrValidationFailed = errors.New("validation failed")

	// ErrConflict is returned when a name collision is detected locally
	// or the backend rejects a mutation as conflicting.
	ErrConflict = errors.New("conflict with current state")

	// ErrBackend is returned on network or server errors, including
	// timeouts. Timed-out requests are indistinguishable from any other
	// backend failure at this layer.
	ErrBackend = errors.New("backend request failed")

	// ErrSession is returned on console or metrics stream failures.
	// Session errors are never fatal to the rest of the view.
	ErrSession = errors.New("session transport failed")

	// ErrActionNotAllowed is returned when a lifecycle action is not
	// permitted in the VM's current state.
	ErrActionNotAllowed = errors.New("action not allowed in current state")
)

// OperationError wraps a failure with the name of the attempted operation
// so notifications can report what was being done. Failed operations are
// never retried automatically.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError wraps err with the operation name.
func NewOperationError(op string, err error) *OperationError {
	return &OperationError{Op: op, Err: err}
}
