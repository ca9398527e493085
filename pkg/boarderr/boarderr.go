// Package boarderr defines the error taxonomy shared by the content and
// aggregate stores. Callers classify failures with errors.Is against the
// sentinels below; stores wrap them with fmt.Errorf("%w") for detail.
package boarderr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks empty or malformed input (thread name, post content).
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced thread, post or user that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks state conflicts such as restoring a never-archived
	// thread or inserting a duplicate primary key.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable marks connection or timeout failures against a store.
	ErrUnavailable = errors.New("store unavailable")
)

// Unavailable wraps an unexpected store error so that both ErrUnavailable
// and the underlying error remain matchable via errors.Is.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrUnavailable, err))
}
