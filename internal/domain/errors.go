package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the order id does not resolve.
	ErrNotFound = errors.New("order not found")

	// ErrConcurrentModification means the optimistic version check failed.
	// The caller must re-fetch the order and retry.
	ErrConcurrentModification = errors.New("order was modified concurrently")
)

// InvalidTransitionError is returned when an event is defined for the
// current status but one of its guards failed (e.g. delivering with no
// photos). The order is left unchanged.
type InvalidTransitionError struct {
	Status OrderStatus
	Event  Event
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s on %s order: %s", e.Event, e.Status, e.Reason)
}

// UnsupportedTransitionError is returned when the event is not defined at
// all from the current status (e.g. approve-payment on a RENTING order).
type UnsupportedTransitionError struct {
	Status OrderStatus
	Event  Event
}

func (e *UnsupportedTransitionError) Error() string {
	return fmt.Sprintf("unsupported transition: %s is not defined from %s", e.Event, e.Status)
}

// EvidenceUploadError means one or more evidence assets could not be
// stored. No order mutation happened.
type EvidenceUploadError struct {
	FileName string
	Err      error
}

func (e *EvidenceUploadError) Error() string {
	return fmt.Sprintf("evidence upload failed for %q: %v", e.FileName, e.Err)
}

func (e *EvidenceUploadError) Unwrap() error { return e.Err }
