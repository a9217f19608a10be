package widget

import "errors"

// Sentinel errors for the widget toolkit.
var (
	// ErrDestroyed is returned when operating on a destroyed widget.
	ErrDestroyed = errors.New("widget destroyed")

	// ErrDuplicateName is returned when a widget name is already in use.
	ErrDuplicateName = errors.New("duplicate widget name")

	// ErrEmptyName is returned when a widget is created without a name.
	ErrEmptyName = errors.New("widget name cannot be empty")

	// ErrInvalidRange is returned for a slider whose bounds or step are unusable.
	ErrInvalidRange = errors.New("invalid slider range")

	// ErrUnknownSignal is returned for a signal name the toolkit does not define.
	ErrUnknownSignal = errors.New("unknown signal")

	// ErrUnsupportedSignal is returned when a widget kind does not emit a signal.
	ErrUnsupportedSignal = errors.New("signal not supported by widget")

	// ErrNilHandler is returned when a nil handler is connected.
	ErrNilHandler = errors.New("handler cannot be nil")
)

// SignalError reports a signal that cannot be connected to a widget.
type SignalError struct {
	// Widget is the widget name.
	Widget string

	// Kind is the widget kind.
	Kind Kind

	// Signal is the requested signal.
	Signal Signal
}

// Error implements the error interface.
func (e *SignalError) Error() string {
	return "widget " + e.Widget + " (" + e.Kind.String() + ") does not emit " + string(e.Signal)
}

// Is allows errors.Is to match SignalError with ErrUnsupportedSignal.
func (e *SignalError) Is(target error) bool {
	return target == ErrUnsupportedSignal
}
