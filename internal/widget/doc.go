// Package widget implements the uikit controls on top of package event.
//
// A Toolkit owns one scoped event per signal kind (clicked, toggled, changed)
// shared by every widget of that kind, plus the global should-quit event.
// Widgets are the senders of their signals. Destroying a widget invalidates
// its sender on every signal so handlers bound to it never run again, even
// though they stay registered until disconnected.
//
// Like package event, a Toolkit must only be used from the UI goroutine.
package widget
