package status

import "errors"

var (
	// ErrValidation is returned for missing or malformed input. It is
	// detected before any store access.
	ErrValidation = errors.New("invalid input")

	// ErrForbidden is returned when the principal lacks the relationship or
	// right an action requires.
	ErrForbidden = errors.New("not permitted")

	// ErrReadOnly is returned by mutating operations while the store is in
	// read-only mode. No write is attempted.
	ErrReadOnly = errors.New("store is read-only")
)
