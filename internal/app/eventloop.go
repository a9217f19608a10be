package app

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/uikit/internal/widget"
)

// handleEvent processes a screen event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return app.handleKeyEvent(ev)
	case *tcell.EventResize:
		app.screen.Sync()
	case *tcell.EventInterrupt:
		if f, ok := ev.Data().(func()); ok {
			f()
		}
	}
	return nil
}

// handleKeyEvent processes keyboard input.
func (app *Application) handleKeyEvent(ev *tcell.EventKey) error {
	start := time.Now()
	defer app.logDuration("key", start)

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return ErrQuit
	case tcell.KeyEscape:
		app.RequestQuit()
	case tcell.KeyTab:
		app.moveFocus(1)
	case tcell.KeyBacktab:
		app.moveFocus(-1)
	case tcell.KeyEnter:
		app.activate()
	case tcell.KeyLeft:
		app.step(-1)
	case tcell.KeyRight:
		app.step(1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			app.activate()
		case 'q':
			app.RequestQuit()
		case 'd':
			app.destroyFocused()
		}
	}
	return nil
}

// focused returns the widget with keyboard focus, if any.
func (app *Application) focused() widget.Widget {
	ws := app.tk.Widgets()
	if len(ws) == 0 {
		return nil
	}
	app.focus = min(max(app.focus, 0), len(ws)-1)
	return ws[app.focus]
}

func (app *Application) moveFocus(delta int) {
	n := len(app.tk.Widgets())
	if n == 0 {
		return
	}
	app.focus = ((app.focus+delta)%n + n) % n
}

// activate clicks a focused button or toggles a focused checkbox.
func (app *Application) activate() {
	var err error
	switch w := app.focused().(type) {
	case *widget.Button:
		err = w.Click()
	case *widget.Checkbox:
		err = w.Toggle()
	}
	app.logComponentError("widget", err)
}

// step moves a focused slider.
func (app *Application) step(n int) {
	if s, ok := app.focused().(*widget.Slider); ok {
		app.logComponentError("widget", s.Step(n))
	}
}

func (app *Application) destroyFocused() {
	w := app.focused()
	if w == nil {
		return
	}
	if err := app.tk.Destroy(w); err != nil {
		app.logComponentError("widget", err)
		return
	}
	app.setStatus(w.Label() + " destroyed")
}
