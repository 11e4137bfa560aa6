package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists. Journal days are written once.
	ErrDuplicateKey = errors.New("duplicate key: record already exists")

	// ErrAlreadyScored is returned when attaching an outcome to an entry
	// that already has one and the update is not forced.
	ErrAlreadyScored = errors.New("entry already scored")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
