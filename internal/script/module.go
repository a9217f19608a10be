package script

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/uikit/internal/event"
	"github.com/dshills/uikit/internal/widget"
)

// register installs the ui table.
func (e *Engine) register() {
	mod := e.l.SetFuncs(e.l.NewTable(), map[string]lua.LGFunction{
		"on":      e.on,
		"off":     e.off,
		"block":   e.block,
		"blocked": e.blocked,
		"on_quit": e.onQuitHandler,
		"click":   e.click,
		"toggle":  e.toggle,
		"set":     e.set,
		"destroy": e.destroy,
		"quit":    e.quit,
		"widgets": e.widgets,
		"status":  e.setStatus,
	})
	e.l.SetGlobal("ui", mod)
}

// on(name, signal, fn) -> id
// fn(name, args) runs every time the widget emits signal.
func (e *Engine) on(L *lua.LState) int {
	name := L.CheckString(1)
	sig := widget.Signal(L.CheckString(2))
	fn := L.CheckFunction(3)

	w := e.widget(L, name)
	conn, err := e.tk.Connect(w, sig, e.handler(fn), name)
	if err != nil {
		L.RaiseError("on: %v", err)
		return 0
	}
	e.conns = append(e.conns, conn)
	L.Push(lua.LString(conn.String()))
	return 1
}

// off(id)
func (e *Engine) off(L *lua.LState) int {
	conn := e.connection(L, 1)
	if err := e.tk.Disconnect(conn); err != nil {
		L.RaiseError("off: %v", err)
	}
	return 0
}

// block(id, blocked)
func (e *Engine) block(L *lua.LState) int {
	conn := e.connection(L, 1)
	blocked := L.OptBool(2, true)
	if err := e.tk.SetBlocked(conn, blocked); err != nil {
		L.RaiseError("block: %v", err)
	}
	return 0
}

// blocked(id) -> bool
func (e *Engine) blocked(L *lua.LState) int {
	conn := e.connection(L, 1)
	blocked, err := e.tk.Blocked(conn)
	if err != nil {
		L.RaiseError("blocked: %v", err)
		return 0
	}
	L.Push(lua.LBool(blocked))
	return 1
}

// on_quit(fn) -> id
// Returning false from fn cancels the quit request.
func (e *Engine) onQuitHandler(L *lua.LState) int {
	fn := L.CheckFunction(1)
	conn, err := e.tk.OnShouldQuit(func(_ event.Sender, args, _ any) {
		req, ok := args.(*widget.QuitRequest)
		if !ok {
			return
		}
		ret, err := e.invoke(fn, 1)
		if err != nil {
			e.logger.Error().Err(err).Str("signal", string(widget.SignalShouldQuit)).Msg("lua handler failed")
			return
		}
		if ret == lua.LFalse {
			req.Cancel = true
		}
	}, nil)
	if err != nil {
		L.RaiseError("on_quit: %v", err)
		return 0
	}
	e.conns = append(e.conns, conn)
	L.Push(lua.LString(conn.String()))
	return 1
}

// click(name)
func (e *Engine) click(L *lua.LState) int {
	name := L.CheckString(1)
	b, ok := e.widget(L, name).(*widget.Button)
	if !ok {
		L.ArgError(1, fmt.Sprintf("%s is not a button", name))
		return 0
	}
	if err := b.Click(); err != nil {
		L.RaiseError("click %s: %v", name, err)
	}
	return 0
}

// toggle(name)
func (e *Engine) toggle(L *lua.LState) int {
	name := L.CheckString(1)
	c, ok := e.widget(L, name).(*widget.Checkbox)
	if !ok {
		L.ArgError(1, fmt.Sprintf("%s is not a checkbox", name))
		return 0
	}
	if err := c.Toggle(); err != nil {
		L.RaiseError("toggle %s: %v", name, err)
	}
	return 0
}

// set(name, value)
// Sliders take a number, checkboxes a boolean.
func (e *Engine) set(L *lua.LState) int {
	name := L.CheckString(1)
	var err error
	switch w := e.widget(L, name).(type) {
	case *widget.Slider:
		err = w.SetValue(L.CheckInt(2))
	case *widget.Checkbox:
		err = w.SetChecked(L.CheckBool(2))
	default:
		L.ArgError(1, fmt.Sprintf("%s has no value", name))
		return 0
	}
	if err != nil {
		L.RaiseError("set %s: %v", name, err)
	}
	return 0
}

// destroy(name)
func (e *Engine) destroy(L *lua.LState) int {
	name := L.CheckString(1)
	if err := e.tk.Destroy(e.widget(L, name)); err != nil {
		L.RaiseError("destroy %s: %v", name, err)
	}
	return 0
}

// quit() -> bool
// Reports whether the request went through.
func (e *Engine) quit(L *lua.LState) int {
	ok := e.tk.RequestQuit()
	if ok && e.onQuit != nil {
		e.onQuit()
	}
	L.Push(lua.LBool(ok))
	return 1
}

// widgets() -> {name, ...}
func (e *Engine) widgets(L *lua.LState) int {
	tbl := L.NewTable()
	for _, w := range e.tk.Widgets() {
		tbl.Append(lua.LString(w.Name()))
	}
	L.Push(tbl)
	return 1
}

// status(msg)
func (e *Engine) setStatus(L *lua.LState) int {
	msg := L.CheckString(1)
	if e.status != nil {
		e.status(msg)
	}
	return 0
}

func (e *Engine) widget(L *lua.LState, name string) widget.Widget {
	w, ok := e.tk.Lookup(name)
	if !ok {
		L.RaiseError("unknown widget %q", name)
	}
	return w
}

func (e *Engine) connection(L *lua.LState, n int) widget.Connection {
	conn, err := widget.ParseConnection(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return conn
}

// handler adapts a Lua function to an event handler. Errors raised by the
// function are logged and do not stop the dispatch.
func (e *Engine) handler(fn *lua.LFunction) event.Handler {
	return func(_ event.Sender, args, data any) {
		name, _ := data.(string)
		if _, err := e.invoke(fn, 0, lua.LString(name), toLValue(args)); err != nil {
			e.logger.Error().Err(err).Str("widget", name).Msg("lua handler failed")
		}
	}
}

// invoke calls fn and returns its first result when nret is 1.
func (e *Engine) invoke(fn *lua.LFunction, nret int, args ...lua.LValue) (lua.LValue, error) {
	if e.closed {
		return lua.LNil, nil
	}
	ret := lua.LValue(lua.LNil)
	err := e.call(context.Background(), func() error {
		e.l.Push(fn)
		for _, a := range args {
			e.l.Push(a)
		}
		if err := e.l.PCall(len(args), nret, nil); err != nil {
			return err
		}
		if nret > 0 {
			ret = e.l.Get(-1)
			e.l.Pop(nret)
		}
		return nil
	})
	return ret, err
}

// toLValue converts signal args to Lua values.
func toLValue(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	default:
		return lua.LString(fmt.Sprint(val))
	}
}
