package domain

import "errors"

var (
	// ErrMarkerNotFound is returned when no marker has the requested id.
	ErrMarkerNotFound = errors.New("marker not found")

	// ErrInvalidPosition is returned for NaN, infinite or out-of-range coordinates.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrInvalidTransition is returned when an editor event is not allowed in the current mode.
	ErrInvalidTransition = errors.New("invalid editor transition")

	// ErrCorruptSnapshot is returned when a persisted snapshot cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt marker snapshot")
)
