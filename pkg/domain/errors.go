package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrStorage is returned when the ledger store could not complete a unit of work.
	// Nothing written inside the failed unit of work is visible afterwards.
	ErrStorage = errors.New("storage failure")
)
