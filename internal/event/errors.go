package event

import (
	"errors"
	"strconv"
)

// ErrInvalidHandler is returned when a handler id does not identify a
// registered handler. The id was never issued by this Event, or it was deleted.
var ErrInvalidHandler = errors.New("invalid handler id")

// InvalidHandlerError records the operation and id of a failed lookup.
type InvalidHandlerError struct {
	// Op is the operation that was attempted ("delete", "set blocked", ...).
	Op string

	// ID is the offending handler id.
	ID HandlerID
}

// Error implements the error interface.
func (e *InvalidHandlerError) Error() string {
	return "event: " + e.Op + ": invalid handler id " + strconv.FormatUint(uint64(e.ID), 10)
}

// Is allows errors.Is to match InvalidHandlerError with ErrInvalidHandler.
func (e *InvalidHandlerError) Is(target error) bool {
	return target == ErrInvalidHandler
}
