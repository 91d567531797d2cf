package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Lookup errors
	ErrNotFound   = errors.New("resource not found")
	ErrMissingKey = fmt.Errorf("%w: no summary record for time slot", ErrNotFound)

	// Input errors
	ErrMalformedInput = errors.New("malformed observation input")
	ErrNoObservations = fmt.Errorf("%w: no observations", ErrMalformedInput)
)

// NewMissingKeyError reports a lookup for an hour/minute slot that has no record.
func NewMissingKeyError(hour, minute int) error {
	return fmt.Errorf("%w: hour %d minute %d", ErrMissingKey, hour, minute)
}

// NewMalformedInputError reports a load-time problem with the raw log store.
func NewMalformedInputError(where string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedInput, where, reason)
}

// NewMissingColumnsError reports required columns absent from a log header.
func NewMissingColumnsError(columns []string) error {
	return fmt.Errorf("%w: missing required columns %v", ErrMalformedInput, columns)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsMissingKeyError(err error) bool {
	return errors.Is(err, ErrMissingKey)
}

func IsMalformedInputError(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}
