// Package common defines shared constants and sentinel errors used across
// the journal store layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")

	// Cipher provider errors.
	ErrKeyMissing = errors.New("encryption key missing")
	ErrTampered   = errors.New("ciphertext tampered or wrong key")

	// Input errors, rejected before any repository call.
	ErrValidation = errors.New("validation error")

	// Service-level flow control.
	ErrInternal = errors.New("internal error")
)

// PersistenceError wraps a durable-store I/O failure. It matches
// ErrPersistence under errors.Is and unwraps to the driver error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// ValidationError reports a single malformed input field. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
