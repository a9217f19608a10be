package script

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/uikit/internal/widget"
)

// DefaultTimeout bounds a single script run or handler invocation.
const DefaultTimeout = 2 * time.Second

// Engine owns a sandboxed Lua state bound to a toolkit.
type Engine struct {
	l  *lua.LState
	tk *widget.Toolkit

	timeout time.Duration
	logger  zerolog.Logger
	onQuit  func()
	status  func(string)

	// conns are the connections made by scripts.
	conns []widget.Connection

	// depth counts active Lua calls started from Go.
	depth  int
	closed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the execution timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithLogger sets the logger that receives script output and handler errors.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithQuitFunc sets the function ui.quit calls once no should-quit handler
// vetoed the request.
func WithQuitFunc(f func()) Option {
	return func(e *Engine) {
		e.onQuit = f
	}
}

// WithStatusFunc sets the function receiving ui.status messages.
func WithStatusFunc(f func(string)) Option {
	return func(e *Engine) {
		e.status = f
	}
}

// New creates an engine for tk.
func New(tk *widget.Toolkit, opts ...Option) *Engine {
	e := &Engine{
		tk:      tk,
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.l = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(e.l)
	e.installSandbox()
	e.register()
	return e
}

// openSafeLibraries opens the libraries scripts may use. io, os, debug and
// package are never opened.
func openSafeLibraries(L *lua.LState) {
	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{"_G", lua.OpenBase},
		{"table", lua.OpenTable},
		{"string", lua.OpenString},
		{"math", lua.OpenMath},
	}
	for _, lib := range libs {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			panic(err)
		}
	}
}

// installSandbox removes loaders and routes print to the logger.
func (e *Engine) installSandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		e.l.SetGlobal(name, lua.LNil)
	}
	e.l.SetGlobal("print", e.l.NewFunction(e.print))
}

func (e *Engine) print(L *lua.LState) int {
	var sb strings.Builder
	for i := 1; i <= L.GetTop(); i++ {
		if i > 1 {
			sb.WriteByte('\t')
		}
		sb.WriteString(L.ToStringMeta(L.Get(i)).String())
	}
	e.logger.Info().Str("source", "lua").Msg(sb.String())
	return 0
}

// RunFile runs the script at path.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return &ScriptError{Name: path, Err: err}
	}
	return e.run(ctx, path, string(src))
}

// RunString runs code as a chunk called name.
func (e *Engine) RunString(ctx context.Context, name, code string) error {
	return e.run(ctx, name, code)
}

func (e *Engine) run(ctx context.Context, name, code string) error {
	if e.closed {
		return ErrClosed
	}
	fn, err := e.l.Load(strings.NewReader(code), name)
	if err != nil {
		return &ScriptError{Name: name, Err: err}
	}

	err = e.call(ctx, func() error {
		e.l.Push(fn)
		return e.l.PCall(0, lua.MultRet, nil)
	})
	if err != nil {
		return &ScriptError{Name: name, Err: err}
	}
	e.logger.Debug().Str("script", name).Msg("script finished")
	return nil
}

// call runs fn with the execution timeout applied. Nested calls share the
// outermost deadline.
func (e *Engine) call(ctx context.Context, fn func() error) error {
	if e.depth > 0 {
		return fn()
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	e.l.SetContext(ctx)
	e.depth++
	defer func() {
		e.depth--
		e.l.RemoveContext()
	}()

	top := e.l.GetTop()
	err := fn()
	if err != nil && ctx.Err() != nil {
		err = ErrTimeout
	}
	e.l.SetTop(top)
	return err
}

// Close disconnects every handler the scripts connected and releases the
// Lua state.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	for _, c := range e.conns {
		// Connections removed by ui.off or retired by Destroy are already gone.
		_ = e.tk.Disconnect(c)
	}
	e.conns = nil
	e.l.Close()
	return nil
}
