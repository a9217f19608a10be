package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/uikit/internal/config"
	"github.com/dshills/uikit/internal/event"
	"github.com/dshills/uikit/internal/widget"
)

func newTestApp(t *testing.T, opts Options) (*Application, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	opts.Screen = sim
	app, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(app.Shutdown)
	return app, sim
}

// session runs the application in the background and feeds it input.
type session struct {
	t    *testing.T
	app  *Application
	sim  tcell.SimulationScreen
	errc chan error
}

func start(t *testing.T, app *Application, sim tcell.SimulationScreen) *session {
	t.Helper()
	s := &session{t: t, app: app, sim: sim, errc: make(chan error, 1)}
	go func() { s.errc <- app.Run() }()
	select {
	case <-app.Ready():
	case err := <-s.errc:
		t.Fatalf("Run() returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not become ready")
	}
	return s
}

func (s *session) key(k tcell.Key) {
	s.sim.InjectKey(k, 0, tcell.ModNone)
}

func (s *session) rune(r rune) {
	s.sim.InjectKey(tcell.KeyRune, r, tcell.ModNone)
}

// snapshot captures the screen text once the events queued so far are
// handled.
func (s *session) snapshot() *string {
	s.t.Helper()
	text := new(string)
	if err := s.app.Post(func() { *text = screenText(s.sim) }); err != nil {
		s.t.Fatalf("Post() error = %v", err)
	}
	return text
}

// wait blocks until Run returns.
func (s *session) wait() error {
	s.t.Helper()
	select {
	case err := <-s.errc:
		return err
	case <-time.After(5 * time.Second):
		s.t.Fatal("Run() did not return")
		return nil
	}
}

// stop quits with Ctrl-C and waits for Run to return.
func (s *session) stop() {
	s.t.Helper()
	s.key(tcell.KeyCtrlC)
	if err := s.wait(); err != nil {
		s.t.Fatalf("Run() error = %v", err)
	}
}

func screenText(sim tcell.SimulationScreen) string {
	cells, w, h := sim.GetContents()
	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := cells[y*w+x]
			if len(c.Runes) > 0 {
				sb.WriteRune(c.Runes[0])
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func lookup[W widget.Widget](t *testing.T, app *Application, name string) W {
	t.Helper()
	w, ok := app.Toolkit().Lookup(name)
	if !ok {
		t.Fatalf("no widget %q", name)
	}
	typed, ok := w.(W)
	if !ok {
		t.Fatalf("widget %q is %T", name, w)
	}
	return typed
}

func TestNew_Defaults(t *testing.T) {
	app, _ := newTestApp(t, Options{})

	if got := len(app.Toolkit().Widgets()); got != 4 {
		t.Errorf("widgets = %d, want 4", got)
	}
	if app.Config().Title != "uikit" {
		t.Errorf("title = %q", app.Config().Title)
	}
	if app.IsRunning() {
		t.Error("IsRunning() = true before Run()")
	}
	if app.MetricsAddr() != "" {
		t.Errorf("MetricsAddr() = %q, want empty", app.MetricsAddr())
	}
}

func TestNew_InvalidOverride(t *testing.T) {
	_, err := New(Options{LogLevel: "loud", Screen: tcell.NewSimulationScreen("")})
	var ie *InitError
	if !errors.As(err, &ie) || ie.Component != "config" {
		t.Fatalf("New() error = %v, want config InitError", err)
	}
	if !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("New() error = %v, want ErrValidationFailed", err)
	}
}

func TestNew_ScriptError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.lua")
	if err := os.WriteFile(path, []byte(`ui.click("missing")`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := New(Options{Scripts: []string{path}, Screen: tcell.NewSimulationScreen("")})
	var ie *InitError
	if !errors.As(err, &ie) || ie.Component != "script" {
		t.Fatalf("New() error = %v, want script InitError", err)
	}
}

func TestRun_KeysDriveWidgets(t *testing.T) {
	app, sim := newTestApp(t, Options{})
	s := start(t, app, sim)

	s.key(tcell.KeyEnter) // click hello
	s.key(tcell.KeyTab)
	s.rune(' ') // toggle mute
	s.key(tcell.KeyTab)
	s.key(tcell.KeyRight)
	s.key(tcell.KeyRight)
	s.key(tcell.KeyLeft)
	text := s.snapshot()
	s.stop()

	if !lookup[*widget.Checkbox](t, app, "mute").Checked() {
		t.Error("mute not toggled")
	}
	if got := lookup[*widget.Slider](t, app, "volume").Value(); got != 6 {
		t.Errorf("volume = %d, want 6", got)
	}
	if app.Status() != "Volume: 6" {
		t.Errorf("status = %q, want %q", app.Status(), "Volume: 6")
	}
	for _, want := range []string{"uikit", "[ Say hello ]", "[x] Mute", "> Volume", "Volume: 6"} {
		if !strings.Contains(*text, want) {
			t.Errorf("screen does not show %q:\n%s", want, *text)
		}
	}
	if app.IsRunning() {
		t.Error("IsRunning() = true after Run returned")
	}
}

func TestRun_FocusWraps(t *testing.T) {
	app, sim := newTestApp(t, Options{})
	s := start(t, app, sim)

	s.key(tcell.KeyBacktab) // wraps to the quit button
	s.key(tcell.KeyBacktab) // volume
	s.key(tcell.KeyRight)
	s.stop()

	if got := lookup[*widget.Slider](t, app, "volume").Value(); got != 6 {
		t.Errorf("volume = %d, want 6", got)
	}
}

func TestRun_DestroyFocused(t *testing.T) {
	app, sim := newTestApp(t, Options{})
	hello := lookup[*widget.Button](t, app, "hello")
	s := start(t, app, sim)

	s.rune('d')
	s.key(tcell.KeyEnter) // focus moved to mute
	s.stop()

	if !hello.Destroyed() {
		t.Fatal("hello not destroyed")
	}
	if _, ok := app.Toolkit().Lookup("hello"); ok {
		t.Error("destroyed widget still registered")
	}
	if !lookup[*widget.Checkbox](t, app, "mute").Checked() {
		t.Error("Enter after destroy did not reach the next widget")
	}
}

func TestRun_QuitKeys(t *testing.T) {
	for _, tt := range []struct {
		name string
		send func(*session)
	}{
		{"q", func(s *session) { s.rune('q') }},
		{"escape", func(s *session) { s.key(tcell.KeyEscape) }},
		{"quit button", func(s *session) {
			s.key(tcell.KeyBacktab)
			s.key(tcell.KeyEnter)
		}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			app, sim := newTestApp(t, Options{})
			s := start(t, app, sim)
			tt.send(s)
			if err := s.wait(); err != nil {
				t.Errorf("Run() error = %v", err)
			}
		})
	}
}

func TestRun_QuitVetoedByScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "veto.lua")
	if err := os.WriteFile(path, []byte(`ui.on_quit(function() return false end)`), 0644); err != nil {
		t.Fatal(err)
	}

	app, sim := newTestApp(t, Options{Scripts: []string{path}})
	s := start(t, app, sim)

	s.rune('q')
	text := s.snapshot()
	s.stop() // Ctrl-C ignores vetoes

	if app.Status() != "quit cancelled" {
		t.Errorf("status = %q, want quit cancelled", app.Status())
	}
	if !strings.Contains(*text, "quit cancelled") {
		t.Errorf("status line not drawn:\n%s", *text)
	}
}

func TestRun_ScriptQuitsAtStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quit.lua")
	if err := os.WriteFile(path, []byte(`ui.quit()`), 0644); err != nil {
		t.Fatal(err)
	}

	app, sim := newTestApp(t, Options{Scripts: []string{path}})
	s := start(t, app, sim)
	if err := s.wait(); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestRun_Twice(t *testing.T) {
	app, sim := newTestApp(t, Options{})
	s := start(t, app, sim)

	if err := app.Run(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
	s.stop()

	if err := app.Run(); !errors.Is(err, ErrStopped) {
		t.Errorf("Run() after stop error = %v, want ErrStopped", err)
	}
	if app.IsRunning() {
		t.Error("IsRunning() = true after Run() returned ErrStopped")
	}
}

func TestPost_NotRunning(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	if err := app.Post(func() {}); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Post() error = %v, want ErrNotRunning", err)
	}
}

func TestConfigReload_DeletesOldHandlers(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	tk := app.Toolkit()
	signals := []widget.Signal{widget.SignalClicked, widget.SignalToggled, widget.SignalChanged}
	before := make(map[widget.Signal]int)
	for _, sig := range signals {
		before[sig] = tk.Event(sig).Len()
	}

	// A widget destroyed from the keyboard leaves dead handlers behind until
	// the next reload.
	_ = tk.Destroy(tk.Widgets()[0])

	for range 10 {
		app.onConfigChanged(event.NoSender, config.Default(), nil)
	}

	for _, sig := range signals {
		if got := tk.Event(sig).Len(); got != before[sig] {
			t.Errorf("%s Len() = %d after reloads, want %d", sig, got, before[sig])
		}
	}
	if got, want := len(tk.Widgets()), len(config.Default().Widgets); got != want {
		t.Errorf("Widgets() = %d, want %d", got, want)
	}
}

func TestRun_ConfigReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uikit.toml")
	write := func(content string) {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write(`
title = "first"

[[widget]]
kind = "button"
name = "one"
`)

	app, sim := newTestApp(t, Options{ConfigPath: path, Watch: true})
	one := lookup[*widget.Button](t, app, "one")
	s := start(t, app, sim)

	write(`
title = "second"

[[widget]]
kind = "checkbox"
name = "two"
`)

	deadline := time.Now().Add(5 * time.Second)
	for {
		reloaded := make(chan bool, 1)
		if err := app.Post(func() { reloaded <- app.Config().Title == "second" }); err != nil {
			t.Fatal(err)
		}
		if <-reloaded {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("config was not reloaded")
		}
		time.Sleep(20 * time.Millisecond)
	}
	s.stop()

	if !one.Destroyed() {
		t.Error("widget from the old config not destroyed")
	}
	lookup[*widget.Checkbox](t, app, "two")
	if !strings.HasPrefix(app.Status(), "config reloaded") {
		t.Errorf("status = %q", app.Status())
	}
}
