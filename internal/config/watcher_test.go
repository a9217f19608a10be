package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/uikit/internal/event"
)

// uiLoop stands in for the UI goroutine: posted functions are queued and
// run by the test goroutine.
type uiLoop struct {
	queue chan func()
}

func newUILoop() *uiLoop {
	return &uiLoop{queue: make(chan func(), 64)}
}

func (l *uiLoop) post(f func()) {
	l.queue <- f
}

// runUntil runs posted functions until cond holds or the timeout expires.
func (l *uiLoop) runUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.After(timeout)
	for !cond() {
		select {
		case f := <-l.queue:
			f()
		case <-deadline:
			t.Fatal("timed out waiting for watcher")
		}
	}
}

func TestWatcher_ReloadFiresChanged(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "uikit.toml", `title = "one"`)

	loop := newUILoop()
	w, err := NewWatcher(path, loop.post, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	var got *Config
	w.Changed().Register(event.NoSender, nil, func(_ event.Sender, args, _ any) {
		got = args.(*Config)
	})

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := os.WriteFile(path, []byte(`title = "two"`), 0644); err != nil {
		t.Fatal(err)
	}
	loop.runUntil(t, 5*time.Second, func() bool { return got != nil })

	if got.Title != "two" {
		t.Errorf("reloaded Title = %q, want two", got.Title)
	}
}

func TestWatcher_InvalidReloadReportsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "uikit.toml", `title = "one"`)

	loop := newUILoop()
	var gotErr error
	w, err := NewWatcher(path, loop.post,
		WithDebounce(10*time.Millisecond),
		WithErrorHandler(func(err error) { gotErr = err }),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	fired := false
	w.Changed().Register(event.NoSender, nil, func(event.Sender, any, any) { fired = true })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(`log_level = "loud"`), 0644); err != nil {
		t.Fatal(err)
	}
	loop.runUntil(t, 5*time.Second, func() bool { return gotErr != nil })

	if !errors.Is(gotErr, ErrValidationFailed) {
		t.Errorf("error = %v, want ErrValidationFailed", gotErr)
	}
	if fired {
		t.Error("Changed fired for an invalid config")
	}
}

func TestWatcher_MovedAwayKeepsConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "uikit.toml", `title = "one"`)

	loop := newUILoop()
	var gotErr error
	w, err := NewWatcher(path, loop.post,
		WithDebounce(10*time.Millisecond),
		WithErrorHandler(func(err error) { gotErr = err }),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	fired := false
	w.Changed().Register(event.NoSender, nil, func(event.Sender, any, any) { fired = true })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	if err := os.Rename(path, filepath.Join(dir, "moved.toml")); err != nil {
		t.Fatal(err)
	}
	loop.runUntil(t, 5*time.Second, func() bool { return gotErr != nil })

	if !errors.Is(gotErr, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", gotErr)
	}
	if fired {
		t.Error("Changed fired after the config file was moved away")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "uikit.toml", `title = "one"`)

	loop := newUILoop()
	w, err := NewWatcher(path, loop.post, WithDebounce(time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "other.toml", `title = "x"`)
	time.Sleep(100 * time.Millisecond)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if n := len(loop.queue); n != 0 {
		t.Errorf("%d functions posted for an unrelated file", n)
	}
}

func TestWatcher_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uikit.toml")
	w, err := NewWatcher(path, func(f func()) { f() })
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("Path() = %q, want absolute", w.Path())
	}
	if !w.Changed().IsGlobal() {
		t.Error("Changed() should be a global event")
	}

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Errorf("second Start() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := w.Start(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Start() after Close error = %v", err)
	}
}
