package domain

import "errors"

var (
	// ErrInvalidTransition is returned when a status change is not allowed
	// from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrItemLocked is returned when a learning item is started before the
	// item preceding it is completed.
	ErrItemLocked = errors.New("learning item is locked")
)
