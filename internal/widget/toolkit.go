package widget

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dshills/uikit/internal/event"
)

// Toolkit creates widgets and owns the events they emit.
type Toolkit struct {
	signals map[Signal]*event.Event
	widgets []Widget
	byName  map[string]Widget

	// conns maps each live widget connection to its widget, so that
	// connections left behind by destroyed widgets can be pruned.
	conns map[Connection]Widget

	observer Observer
	logger   zerolog.Logger
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithObserver installs a dispatch observer.
func WithObserver(o Observer) Option {
	return func(tk *Toolkit) {
		tk.observer = o
	}
}

// WithLogger sets the toolkit logger.
func WithLogger(l zerolog.Logger) Option {
	return func(tk *Toolkit) {
		tk.logger = l
	}
}

// New creates an empty toolkit.
func New(opts ...Option) *Toolkit {
	tk := &Toolkit{
		signals: map[Signal]*event.Event{
			SignalClicked:    event.New(),
			SignalToggled:    event.New(),
			SignalChanged:    event.New(),
			SignalShouldQuit: event.New(event.WithGlobal()),
		},
		byName: make(map[string]Widget),
		conns:  make(map[Connection]Widget),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(tk)
	}
	return tk
}

// Event returns the event behind a signal, or nil for an unknown signal.
func (tk *Toolkit) Event(sig Signal) *event.Event {
	return tk.signals[sig]
}

// Lookup returns the live widget with the given name.
func (tk *Toolkit) Lookup(name string) (Widget, bool) {
	w, ok := tk.byName[name]
	return w, ok
}

// Widgets returns the live widgets in creation order.
func (tk *Toolkit) Widgets() []Widget {
	return slices.Clone(tk.widgets)
}

// add registers a freshly built widget.
func (tk *Toolkit) add(w Widget) error {
	name := w.Name()
	if name == "" {
		return ErrEmptyName
	}
	if _, exists := tk.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	tk.widgets = append(tk.widgets, w)
	tk.byName[name] = w
	tk.logger.Debug().
		Str("widget", name).
		Str("kind", w.Kind().String()).
		Stringer("sender", w.Sender()).
		Msg("widget created")
	if tk.observer != nil {
		tk.observer.WidgetCount(len(tk.widgets))
	}
	return nil
}

// Destroy invalidates the widget's sender on every signal and removes it
// from the toolkit. Handlers connected to the widget stay registered but
// never run again, until they are disconnected or pruned.
func (tk *Toolkit) Destroy(w Widget) error {
	b := w.base()
	if b.destroyed {
		return ErrDestroyed
	}

	for _, ev := range tk.signals {
		ev.InvalidateSender(b.sender)
	}
	b.destroyed = true

	delete(tk.byName, b.name)
	tk.widgets = slices.DeleteFunc(tk.widgets, func(x Widget) bool { return x == w })

	tk.logger.Debug().Str("widget", b.name).Msg("widget destroyed")
	if tk.observer != nil {
		tk.observer.WidgetCount(len(tk.widgets))
	}
	return nil
}

// Connect registers h for a signal emitted by w. The handler receives the
// widget's sender, the signal args, and data.
func (tk *Toolkit) Connect(w Widget, sig Signal, h event.Handler, data any) (Connection, error) {
	if h == nil {
		return Connection{}, ErrNilHandler
	}
	ev, ok := tk.signals[sig]
	if !ok || sig == SignalShouldQuit {
		return Connection{}, fmt.Errorf("%w: %q", ErrUnknownSignal, sig)
	}
	if w.Kind().Signal() != sig {
		return Connection{}, &SignalError{Widget: w.Name(), Kind: w.Kind(), Signal: sig}
	}
	if w.Destroyed() {
		return Connection{}, ErrDestroyed
	}

	id := ev.Register(w.Sender(), data, tk.instrument(sig, h))
	c := Connection{Signal: sig, ID: id}
	tk.conns[c] = w
	return c, nil
}

// OnShouldQuit registers a handler for the global quit request. Handlers
// receive a *QuitRequest as args and may set Cancel to veto quitting.
func (tk *Toolkit) OnShouldQuit(h event.Handler, data any) (Connection, error) {
	if h == nil {
		return Connection{}, ErrNilHandler
	}
	id := tk.signals[SignalShouldQuit].Register(event.NoSender, data, tk.instrument(SignalShouldQuit, h))
	return Connection{Signal: SignalShouldQuit, ID: id}, nil
}

// RequestQuit fires the should-quit event and reports whether quitting may
// proceed.
func (tk *Toolkit) RequestQuit() bool {
	req := &QuitRequest{}
	tk.fire(SignalShouldQuit, event.NoSender, "", req)
	return !req.Cancel
}

// Disconnect deletes a connection.
func (tk *Toolkit) Disconnect(c Connection) error {
	ev, err := tk.lookup(c)
	if err != nil {
		return err
	}
	if err := ev.Delete(c.ID); err != nil {
		return fmt.Errorf("disconnect %s: %w", c, err)
	}
	delete(tk.conns, c)
	return nil
}

// Prune disconnects every connection whose widget was destroyed and returns
// how many were removed.
func (tk *Toolkit) Prune() int {
	n := 0
	for c, w := range tk.conns {
		if !w.Destroyed() {
			continue
		}
		if err := tk.signals[c.Signal].Delete(c.ID); err != nil {
			tk.logger.Warn().Err(err).Stringer("connection", c).Msg("prune")
		}
		delete(tk.conns, c)
		n++
	}
	if n > 0 {
		tk.logger.Debug().Int("connections", n).Msg("pruned")
	}
	return n
}

// SetBlocked blocks or unblocks a connection.
func (tk *Toolkit) SetBlocked(c Connection, blocked bool) error {
	ev, err := tk.lookup(c)
	if err != nil {
		return err
	}
	if err := ev.SetBlocked(c.ID, blocked); err != nil {
		return fmt.Errorf("block %s: %w", c, err)
	}
	return nil
}

// Blocked reports whether a connection is blocked.
func (tk *Toolkit) Blocked(c Connection) (bool, error) {
	ev, err := tk.lookup(c)
	if err != nil {
		return false, err
	}
	blocked, err := ev.Blocked(c.ID)
	if err != nil {
		return false, fmt.Errorf("blocked %s: %w", c, err)
	}
	return blocked, nil
}

func (tk *Toolkit) lookup(c Connection) (*event.Event, error) {
	ev, ok := tk.signals[c.Signal]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSignal, c.Signal)
	}
	return ev, nil
}

func (tk *Toolkit) instrument(sig Signal, h event.Handler) event.Handler {
	if tk.observer == nil {
		return h
	}
	return func(sender event.Sender, args, data any) {
		tk.observer.Invoked(sig)
		h(sender, args, data)
	}
}

func (tk *Toolkit) fire(sig Signal, sender event.Sender, name string, args any) {
	if tk.observer != nil {
		tk.observer.Fired(sig)
	}
	tk.logger.Debug().
		Str("signal", string(sig)).
		Str("widget", name).
		Interface("args", args).
		Msg("fire")
	tk.signals[sig].Fire(sender, args)
}

// ParseConnection parses the form produced by Connection.String.
func ParseConnection(s string) (Connection, error) {
	sig, id, ok := strings.Cut(s, ":")
	if !ok {
		return Connection{}, fmt.Errorf("malformed connection %q", s)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return Connection{}, fmt.Errorf("malformed connection %q: %w", s, err)
	}
	return Connection{Signal: Signal(sig), ID: event.HandlerID(n)}, nil
}
