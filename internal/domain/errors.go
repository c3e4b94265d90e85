package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a referenced flight, seat, aircraft, crew member or
// order that does not exist. Fatal to the request, never retried.
var ErrNotFound = errors.New("not found")

// ValidationError is a malformed or inconsistent request, rejected before
// any inventory is touched.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictError reports seats that became unavailable between the client's
// read and the reservation attempt. The caller prompts re-selection.
type ConflictError struct {
	SeatIDs []int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d seat(s) no longer available", len(e.SeatIDs))
}

// AsConflict unwraps err into a ConflictError if it is one.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IntegrityError is an attempted invariant breach, e.g. an overlapping crew
// assignment that bypassed the availability checker. It must never reach
// the store; the committing transaction rolls back.
type IntegrityError struct {
	Msg string
}

func (e *IntegrityError) Error() string { return e.Msg }

func Integrityf(format string, args ...interface{}) error {
	return &IntegrityError{Msg: fmt.Sprintf(format, args...)}
}
