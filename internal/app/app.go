// Package app runs the uikit demo: a terminal window of widgets whose
// signals are dispatched through the event registry.
package app

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/uikit/internal/config"
	"github.com/dshills/uikit/internal/event"
	"github.com/dshills/uikit/internal/script"
	"github.com/dshills/uikit/internal/widget"
)

// Application owns the screen, the toolkit and everything wired to it.
// Apart from Post, its methods must be called from the UI goroutine.
type Application struct {
	opts   Options
	cfg    *config.Config
	logger zerolog.Logger
	logOut io.Closer

	metrics    *Metrics
	metricsSrv *metricsServer

	tk      *widget.Toolkit
	scripts *script.Engine
	watcher *config.Watcher
	screen  tcell.Screen

	focus    int
	status   string
	quitting bool

	running atomic.Bool
	stopped atomic.Bool
	ready   chan struct{}
}

// Options configures the application. Non-empty fields override the
// configuration file.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// LogLevel sets the logging verbosity.
	LogLevel string

	// LogFile is where logs are written.
	LogFile string

	// MetricsAddr serves Prometheus metrics when set.
	MetricsAddr string

	// Scripts are run after the configured ones.
	Scripts []string

	// Watch reloads the configuration file when it changes.
	Watch bool

	// Screen replaces the terminal screen. Tests use a simulation screen.
	Screen tcell.Screen

	// LogOutput receives the log when no log file is configured.
	LogOutput io.Writer
}

// New creates an application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:  opts,
		ready: make(chan struct{}),
	}
	if err := app.bootstrap(); err != nil {
		app.shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	cfg := config.Default()
	if app.opts.ConfigPath != "" {
		loaded, err := config.Load(app.opts.ConfigPath)
		if err != nil {
			return &InitError{Component: "config", Err: err}
		}
		cfg = loaded
	}
	if err := app.applyOverrides(cfg); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.cfg = cfg

	// 2. Logger
	logger, closer, err := NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.LogLevel),
		File:   cfg.LogFile,
		Output: app.opts.LogOutput,
	})
	if err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	app.logger, app.logOut = logger, closer

	// 3. Metrics
	app.metrics = NewMetrics()
	if cfg.MetricsAddr != "" {
		srv, err := startMetricsServer(cfg.MetricsAddr, app.metrics, WithComponent(logger, "metrics"))
		if err != nil {
			return &InitError{Component: "metrics", Err: err}
		}
		app.metricsSrv = srv
	}

	// 4. Toolkit
	app.tk = widget.New(
		widget.WithObserver(app.metrics),
		widget.WithLogger(WithComponent(logger, "widget")),
	)
	if _, err := app.tk.OnShouldQuit(app.logQuitRequest, nil); err != nil {
		return &InitError{Component: "toolkit", Err: err}
	}

	// 5. Widgets and scripts
	if err := app.load(cfg); err != nil {
		return err
	}

	// 6. Screen
	app.screen = app.opts.Screen
	if app.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return &InitError{Component: "screen", Err: err}
		}
		app.screen = s
	}

	// 7. Config watcher
	if app.opts.Watch && app.opts.ConfigPath != "" {
		w, err := config.NewWatcher(app.opts.ConfigPath, app.post,
			config.WithWatcherLogger(WithComponent(logger, "config")),
			config.WithErrorHandler(func(err error) {
				app.setStatus("config error: " + err.Error())
			}),
		)
		if err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
		w.Changed().Register(event.NoSender, nil, app.onConfigChanged)
		app.watcher = w
	}

	return nil
}

func (app *Application) applyOverrides(cfg *config.Config) error {
	if app.opts.LogLevel != "" {
		cfg.LogLevel = app.opts.LogLevel
	}
	if app.opts.LogFile != "" {
		cfg.LogFile = app.opts.LogFile
	}
	if app.opts.MetricsAddr != "" {
		cfg.MetricsAddr = app.opts.MetricsAddr
	}
	cfg.Scripts = append(cfg.Scripts, app.opts.Scripts...)
	return cfg.Validate()
}

// load builds the configured widgets, connects the built-in handlers and
// runs the scripts.
func (app *Application) load(cfg *config.Config) error {
	defer app.logDuration("load", time.Now())

	if err := cfg.Build(app.tk); err != nil {
		return &InitError{Component: "widgets", Err: err}
	}
	for _, w := range app.tk.Widgets() {
		if err := app.connectStatus(w); err != nil {
			return &InitError{Component: "widgets", Err: err}
		}
	}
	if err := app.connectActions(cfg); err != nil {
		return &InitError{Component: "widgets", Err: err}
	}

	app.scripts = script.New(app.tk,
		script.WithLogger(WithComponent(app.logger, "script")),
		script.WithQuitFunc(app.Quit),
		script.WithStatusFunc(app.setStatus),
	)
	for _, path := range cfg.Scripts {
		if err := app.scripts.RunFile(context.Background(), path); err != nil {
			return &InitError{Component: "script", Err: err}
		}
	}
	app.focus = 0
	return nil
}

// Run starts the main loop and blocks until the application quits.
// An Application runs once; later calls return ErrStopped.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	if app.stopped.Load() {
		app.running.Store(false)
		return ErrStopped
	}
	defer func() {
		app.stopped.Store(true)
		app.running.Store(false)
	}()

	if err := app.screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	defer app.screen.Fini()

	if app.watcher != nil {
		if err := app.watcher.Start(); err != nil {
			app.logComponentError("watcher", err)
		}
	}
	close(app.ready)

	app.logger.Info().Str("title", app.cfg.Title).Msg("running")
	err := app.eventLoop()
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}

// Ready is closed once the screen is initialized and Post may be used.
func (app *Application) Ready() <-chan struct{} {
	return app.ready
}

// eventLoop dispatches screen events until quit.
func (app *Application) eventLoop() error {
	if app.quitting {
		return ErrQuit
	}
	app.draw()
	for {
		ev := app.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := app.handleEvent(ev); err != nil {
			return err
		}
		if app.quitting {
			return ErrQuit
		}
		app.draw()
	}
}

// Post queues f to run on the UI goroutine. It is safe to call from any
// goroutine once the application is running.
func (app *Application) Post(f func()) error {
	if !app.running.Load() {
		return ErrNotRunning
	}
	return app.screen.PostEvent(tcell.NewEventInterrupt(f))
}

// post adapts Post for callers that cannot handle errors.
func (app *Application) post(f func()) {
	if err := app.Post(f); err != nil {
		app.logger.Warn().Err(err).Msg("dropping posted function")
	}
}

// Quit makes the main loop exit after the current event. It does not
// consult should-quit handlers.
func (app *Application) Quit() {
	app.quitting = true
}

// RequestQuit asks the should-quit handlers and quits unless one vetoes.
func (app *Application) RequestQuit() bool {
	if !app.tk.RequestQuit() {
		app.setStatus("quit cancelled")
		return false
	}
	app.Quit()
	return true
}

// Toolkit returns the widget toolkit.
func (app *Application) Toolkit() *widget.Toolkit {
	return app.tk
}

// Metrics returns the application metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// MetricsAddr returns the address metrics are served on, or "".
func (app *Application) MetricsAddr() string {
	if app.metricsSrv == nil {
		return ""
	}
	return app.metricsSrv.Addr()
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Status returns the status line text.
func (app *Application) Status() string {
	return app.status
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Shutdown releases resources. It must not be called while Run is active.
func (app *Application) Shutdown() {
	app.shutdown()
}

// shutdown performs cleanup in reverse initialization order.
func (app *Application) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if app.watcher != nil {
		app.logComponentError("watcher", app.watcher.Close())
		app.watcher = nil
	}
	if app.scripts != nil {
		app.logComponentError("script", app.scripts.Close())
		app.scripts = nil
	}
	if app.metricsSrv != nil {
		app.logComponentError("metrics", app.metricsSrv.shutdown(ctx))
		app.metricsSrv = nil
	}
	if app.logOut != nil {
		_ = app.logOut.Close()
		app.logOut = nil
	}
}
