package widget

import (
	"fmt"

	"github.com/dshills/uikit/internal/event"
)

// Widget is implemented by every control created by a Toolkit.
type Widget interface {
	// Name returns the unique widget name.
	Name() string

	// Label returns the display text.
	Label() string

	// Kind returns the widget type.
	Kind() Kind

	// Sender returns the identity the widget fires its signal with.
	Sender() event.Sender

	// Destroyed reports whether the widget was destroyed.
	Destroyed() bool

	base() *common
}

// common holds state shared by all widgets.
type common struct {
	tk        *Toolkit
	name      string
	label     string
	kind      Kind
	sender    event.Sender
	destroyed bool
}

func newCommon(tk *Toolkit, kind Kind, name, label string) common {
	return common{
		tk:     tk,
		name:   name,
		label:  label,
		kind:   kind,
		sender: event.NewSender(),
	}
}

func (c *common) Name() string         { return c.name }
func (c *common) Label() string        { return c.label }
func (c *common) Kind() Kind           { return c.kind }
func (c *common) Sender() event.Sender { return c.sender }
func (c *common) Destroyed() bool      { return c.destroyed }
func (c *common) base() *common        { return c }

func (c *common) emit(args any) error {
	if c.destroyed {
		return ErrDestroyed
	}
	c.tk.fire(c.kind.Signal(), c.sender, c.name, args)
	return nil
}

// Button emits clicked.
type Button struct {
	common
}

// NewButton creates a button.
func (tk *Toolkit) NewButton(name, label string) (*Button, error) {
	b := &Button{common: newCommon(tk, KindButton, name, label)}
	if err := tk.add(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Click emits clicked.
func (b *Button) Click() error {
	return b.emit(nil)
}

// Checkbox emits toggled with its new state.
type Checkbox struct {
	common
	checked bool
}

// NewCheckbox creates a checkbox.
func (tk *Toolkit) NewCheckbox(name, label string, checked bool) (*Checkbox, error) {
	c := &Checkbox{common: newCommon(tk, KindCheckbox, name, label), checked: checked}
	if err := tk.add(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Checked returns the current state.
func (c *Checkbox) Checked() bool {
	return c.checked
}

// Toggle flips the state and emits toggled.
func (c *Checkbox) Toggle() error {
	return c.SetChecked(!c.checked)
}

// SetChecked sets the state. toggled is emitted only when the state changes.
func (c *Checkbox) SetChecked(checked bool) error {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.checked == checked {
		return nil
	}
	c.checked = checked
	return c.emit(checked)
}

// Slider emits changed with its new value.
type Slider struct {
	common
	min, max int
	step     int
	value    int
}

// NewSlider creates a slider. The initial value is clamped to [lo, hi].
func (tk *Toolkit) NewSlider(name, label string, lo, hi, value, step int) (*Slider, error) {
	if lo >= hi || step <= 0 {
		return nil, fmt.Errorf("%w: min=%d max=%d step=%d", ErrInvalidRange, lo, hi, step)
	}
	s := &Slider{
		common: newCommon(tk, KindSlider, name, label),
		min:    lo,
		max:    hi,
		step:   step,
	}
	s.value = s.clamp(value)
	if err := tk.add(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Value returns the current value.
func (s *Slider) Value() int {
	return s.value
}

// Range returns the slider bounds.
func (s *Slider) Range() (lo, hi int) {
	return s.min, s.max
}

// SetValue clamps v to the slider range and emits changed when the value
// differs from the current one.
func (s *Slider) SetValue(v int) error {
	if s.destroyed {
		return ErrDestroyed
	}
	v = s.clamp(v)
	if v == s.value {
		return nil
	}
	s.value = v
	return s.emit(v)
}

// Step moves the value by n steps (negative moves down).
func (s *Slider) Step(n int) error {
	return s.SetValue(s.value + n*s.step)
}

func (s *Slider) clamp(v int) int {
	return max(s.min, min(s.max, v))
}
