package services

import "errors"

var (
	// ErrInvalidInput marks a request rejected by service validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoOccurrence is returned when a schedule would never fire.
	ErrNoOccurrence = errors.New("schedule has no upcoming occurrence")
)
