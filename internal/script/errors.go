package script

import "errors"

// Errors returned by the scripting engine.
var (
	// ErrClosed is returned when running a script on a closed engine.
	ErrClosed = errors.New("script engine is closed")

	// ErrTimeout is returned when a script exceeds its execution timeout.
	ErrTimeout = errors.New("script execution timeout")
)

// ScriptError reports a failure while running a script.
type ScriptError struct {
	// Name is the script path or chunk name.
	Name string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return "script " + e.Name + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ScriptError) Unwrap() error {
	return e.Err
}
