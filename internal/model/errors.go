package model

import "errors"

var (
	// ErrInvalidDigit is returned when a digit outside 0-9 is requested.
	ErrInvalidDigit = errors.New("invalid digit")

	// ErrInsufficientInput marks a stroke released with too few points.
	ErrInsufficientInput = errors.New("insufficient input")

	// ErrPersistence wraps any progress store failure.
	ErrPersistence = errors.New("persistence failure")
)
