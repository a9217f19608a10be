package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/dshills/uikit/internal/event"
)

// DefaultDebounce is how long the watcher waits after the last change before
// reloading. Editors often write a file in several steps.
const DefaultDebounce = 100 * time.Millisecond

// PostFunc schedules f to run on the UI goroutine.
type PostFunc func(f func())

// Watcher reloads a configuration file when it changes on disk.
type Watcher struct {
	path     string
	post     PostFunc
	changed  *event.Event
	onError  func(error)
	debounce time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	closed  bool
	done    chan struct{}
	stopped sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler sets the function receiving reload and watch errors.
// It runs on the UI goroutine.
func WithErrorHandler(f func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = f
	}
}

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(l zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// NewWatcher creates a watcher for the file at path. Reloaded configurations
// are announced through Changed; post must run its argument on the goroutine
// that owns the UI.
func NewWatcher(path string, post PostFunc, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		post:     post,
		changed:  event.New(event.WithGlobal()),
		onError:  func(error) {},
		debounce: DefaultDebounce,
		logger:   zerolog.Nop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Changed returns the global event fired with the reloaded *Config.
// Handlers must be registered from the UI goroutine.
func (w *Watcher) Changed() *event.Event {
	return w.changed
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching. The file's directory is watched so that editors
// replacing the file by rename are noticed.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.fsw != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw

	w.stopped.Add(1)
	go w.loop(fsw)

	w.logger.Debug().Str("path", w.path).Msg("watching config")
	return nil
}

// Close stops watching and waits for the watch goroutine to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	fsw := w.fsw
	w.mu.Unlock()

	var err error
	if fsw != nil {
		err = fsw.Close()
	}
	w.stopped.Wait()
	return err
}

func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	defer w.stopped.Done()

	var timer *time.Timer
	var reload <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			reload = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.report(fmt.Errorf("watching %s: %w", w.path, err))

		case <-reload:
			reload = nil
			w.reload()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// reload fails when the file is gone, so moving it away keeps the current
// configuration.
func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	if err != nil {
		w.report(err)
		return
	}
	w.logger.Info().Str("path", w.path).Msg("config reloaded")
	w.post(func() {
		w.changed.Fire(event.NoSender, cfg)
	})
}

func (w *Watcher) report(err error) {
	w.logger.Warn().Err(err).Msg("config watcher")
	w.post(func() {
		w.onError(err)
	})
}
