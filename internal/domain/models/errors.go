package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a concurrent write won the race for the same record.
	ErrConflict = errors.New("record was modified concurrently")
	// ErrDuplicate indicates a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)

// FieldViolation describes one rejected input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every violation found in a payload.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a failure of the backing store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
