package entities

import "errors"

var (
	// ErrNotFound is returned when a record does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write lost a revision race.
	ErrConflict = errors.New("revision conflict")
	// ErrInvalidTransition is returned for a case status move the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrUnknownStatus is returned for a status outside the fixed enumeration.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrInvalidInsight is returned when a remote insight payload has the wrong shape.
	ErrInvalidInsight = errors.New("invalid insight")
)
