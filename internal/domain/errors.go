package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers map these to HTTP
// responses; services never let raw driver errors cross the boundary.
var (
	ErrNotAuthenticated = errors.New("you must be logged in to vote")
	ErrAlreadyVoted     = errors.New("you already voted on this caption")
	ErrInvalidVote      = errors.New("invalid vote")
	ErrCaptionNotFound  = errors.New("caption not found")
	ErrImageNotFound    = errors.New("image not found")
)

// StoreError wraps a persistence failure with the operation that caused it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a StoreError for the given operation.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
