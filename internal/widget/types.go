package widget

import (
	"strconv"

	"github.com/dshills/uikit/internal/event"
)

// Kind identifies a widget type.
type Kind int

const (
	// KindButton is a push button.
	KindButton Kind = iota

	// KindCheckbox is a two-state toggle.
	KindCheckbox

	// KindSlider is a bounded integer value.
	KindSlider
)

// String returns the kind name used in configuration files.
func (k Kind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindCheckbox:
		return "checkbox"
	case KindSlider:
		return "slider"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "button":
		return KindButton, true
	case "checkbox":
		return KindCheckbox, true
	case "slider":
		return KindSlider, true
	default:
		return 0, false
	}
}

// Signal names an observable change.
type Signal string

const (
	// SignalClicked is emitted by buttons. Args are nil.
	SignalClicked Signal = "clicked"

	// SignalToggled is emitted by checkboxes. Args are the new state (bool).
	SignalToggled Signal = "toggled"

	// SignalChanged is emitted by sliders. Args are the new value (int).
	SignalChanged Signal = "changed"

	// SignalShouldQuit is the global quit request. Args are a *QuitRequest.
	SignalShouldQuit Signal = "should-quit"
)

// Signal returns the signal emitted by widgets of this kind.
func (k Kind) Signal() Signal {
	switch k {
	case KindButton:
		return SignalClicked
	case KindCheckbox:
		return SignalToggled
	case KindSlider:
		return SignalChanged
	default:
		return ""
	}
}

// Connection identifies a handler connected through a Toolkit.
type Connection struct {
	Signal Signal
	ID     event.HandlerID
}

// String returns "signal:id".
func (c Connection) String() string {
	return string(c.Signal) + ":" + strconv.FormatUint(uint64(c.ID), 10)
}

// QuitRequest is passed to should-quit handlers. Any handler may set Cancel.
type QuitRequest struct {
	Cancel bool
}

// Observer is notified about dispatch activity.
type Observer interface {
	// Fired is called before a signal is dispatched.
	Fired(sig Signal)

	// Invoked is called each time a handler runs.
	Invoked(sig Signal)

	// WidgetCount is called when widgets are created or destroyed.
	WidgetCount(n int)
}
