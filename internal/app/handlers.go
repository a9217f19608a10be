package app

import (
	"fmt"
	"strconv"

	"github.com/dshills/uikit/internal/config"
	"github.com/dshills/uikit/internal/event"
	"github.com/dshills/uikit/internal/widget"
)

// connectStatus connects the handler that reports a widget's signal on the
// status line.
func (app *Application) connectStatus(w widget.Widget) error {
	_, err := app.tk.Connect(w, w.Kind().Signal(), app.statusHandler, w)
	return err
}

// connectActions connects the built-in button actions.
func (app *Application) connectActions(cfg *config.Config) error {
	for _, spec := range cfg.Widgets {
		if spec.Action != config.ActionQuit {
			continue
		}
		w, ok := app.tk.Lookup(spec.Name)
		if !ok {
			continue
		}
		if _, err := app.tk.Connect(w, widget.SignalClicked, app.quitAction, nil); err != nil {
			return err
		}
	}
	return nil
}

func (app *Application) quitAction(event.Sender, any, any) {
	app.RequestQuit()
}

func (app *Application) statusHandler(_ event.Sender, args, data any) {
	w, ok := data.(widget.Widget)
	if !ok {
		return
	}
	switch v := args.(type) {
	case bool:
		state := "off"
		if v {
			state = "on"
		}
		app.setStatus(w.Label() + ": " + state)
	case int:
		app.setStatus(w.Label() + ": " + strconv.Itoa(v))
	default:
		app.setStatus(w.Label() + " clicked")
	}
}

func (app *Application) logQuitRequest(event.Sender, any, any) {
	app.logger.Info().Msg("quit requested")
}

func (app *Application) setStatus(msg string) {
	app.status = msg
}

// onConfigChanged replaces the widgets and scripts with those of the
// reloaded configuration. The old widgets are destroyed and the handlers
// connected to them are deleted.
func (app *Application) onConfigChanged(_ event.Sender, args, _ any) {
	cfg, ok := args.(*config.Config)
	if !ok {
		return
	}
	if err := app.applyOverrides(cfg); err != nil {
		app.setStatus("config error: " + err.Error())
		return
	}

	if err := app.scripts.Close(); err != nil {
		app.logComponentError("script", err)
	}
	for _, w := range app.tk.Widgets() {
		if err := app.tk.Destroy(w); err != nil {
			app.logComponentError("widget", err)
		}
	}
	app.tk.Prune()

	if err := app.load(cfg); err != nil {
		app.logComponentError("config", err)
		app.setStatus("config error: " + err.Error())
		return
	}
	app.cfg = cfg
	app.setStatus(fmt.Sprintf("config reloaded (%d widgets)", len(app.tk.Widgets())))
}
