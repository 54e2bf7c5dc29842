package domain

import "errors"

var (
	// ErrInvalidInput marks a non-positive amount, a malformed date or
	// similar input rejected before it reaches the engine.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when removing a record that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrMalformedSnapshot marks persisted data that cannot be decoded or
	// fails checksum validation.
	ErrMalformedSnapshot = errors.New("malformed persisted data")

	// ErrMissingCollections rejects an import carrying neither paydays nor
	// AISH payments.
	ErrMissingCollections = errors.New("import contains neither paydays nor aishPayments")
)
