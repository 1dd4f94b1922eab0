package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrConstraintViolation is returned when a row violates a NOT NULL or CHECK constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKey is returned when a row references a record that does not exist.
	ErrForeignKey = errors.New("persistence: foreign key violation")
)
