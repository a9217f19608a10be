package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/uikit/internal/widget"
)

// Config is the uikit application configuration.
type Config struct {
	// Title is shown in the header line.
	Title string `toml:"title" yaml:"title"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// LogFile receives log output. Empty disables logging.
	LogFile string `toml:"log_file" yaml:"log_file"`

	// MetricsAddr, when set, serves Prometheus metrics on this address.
	MetricsAddr string `toml:"metrics_addr" yaml:"metrics_addr"`

	// Scripts are Lua files run at startup, relative to the config file.
	Scripts []string `toml:"scripts" yaml:"scripts"`

	// Widgets are created in order.
	Widgets []WidgetSpec `toml:"widget" yaml:"widgets"`
}

// WidgetSpec describes one widget.
type WidgetSpec struct {
	Kind    string `toml:"kind" yaml:"kind"`
	Name    string `toml:"name" yaml:"name"`
	Label   string `toml:"label" yaml:"label"`
	Checked bool   `toml:"checked" yaml:"checked"`
	Min     int    `toml:"min" yaml:"min"`
	Max     int    `toml:"max" yaml:"max"`
	Value   int    `toml:"value" yaml:"value"`
	Step    int    `toml:"step" yaml:"step"`

	// Action names a built-in behavior run when a button is clicked.
	Action string `toml:"action" yaml:"action"`
}

// Button actions.
const (
	// ActionQuit requests the application to quit.
	ActionQuit = "quit"
)

// Default returns the built-in configuration: a small demo form.
func Default() *Config {
	return &Config{
		Title:    "uikit",
		LogLevel: "info",
		Widgets: []WidgetSpec{
			{Kind: "button", Name: "hello", Label: "Say hello"},
			{Kind: "checkbox", Name: "mute", Label: "Mute"},
			{Kind: "slider", Name: "volume", Label: "Volume", Min: 0, Max: 10, Value: 5, Step: 1},
			{Kind: "button", Name: "quit", Label: "Quit", Action: ActionQuit},
		},
	}
}

// Validate checks the configuration and returns a *ValidationError listing
// every problem found.
func (c *Config) Validate() error {
	var problems []string

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		problems = append(problems, fmt.Sprintf("log_level %q is not a valid level", c.LogLevel))
	}

	seen := make(map[string]bool)
	for i, w := range c.Widgets {
		where := fmt.Sprintf("widget[%d]", i)
		if w.Name == "" {
			problems = append(problems, where+": name is required")
		} else if seen[w.Name] {
			problems = append(problems, fmt.Sprintf("%s: duplicate name %q", where, w.Name))
		}
		seen[w.Name] = true

		kind, ok := widget.ParseKind(w.Kind)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown kind %q", where, w.Kind))
			continue
		}
		if w.Action != "" {
			if kind != widget.KindButton {
				problems = append(problems, fmt.Sprintf("%s: action is only valid on buttons", where))
			} else if w.Action != ActionQuit {
				problems = append(problems, fmt.Sprintf("%s: unknown action %q", where, w.Action))
			}
		}
		if kind == widget.KindSlider {
			if w.Min >= w.Max {
				problems = append(problems, fmt.Sprintf("%s: min %d must be below max %d", where, w.Min, w.Max))
			}
			if w.Step <= 0 {
				problems = append(problems, fmt.Sprintf("%s: step %d must be positive", where, w.Step))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// applyDefaults fills fields left empty by a config file.
func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "uikit"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	for i := range c.Widgets {
		w := &c.Widgets[i]
		if w.Label == "" {
			w.Label = w.Name
		}
		if w.Kind == "slider" && w.Step == 0 {
			w.Step = 1
		}
	}
}

// Build creates the configured widgets on tk.
func (c *Config) Build(tk *widget.Toolkit) error {
	for _, w := range c.Widgets {
		var err error
		switch w.Kind {
		case "button":
			_, err = tk.NewButton(w.Name, w.Label)
		case "checkbox":
			_, err = tk.NewCheckbox(w.Name, w.Label, w.Checked)
		case "slider":
			_, err = tk.NewSlider(w.Name, w.Label, w.Min, w.Max, w.Value, w.Step)
		default:
			err = fmt.Errorf("unknown kind %q", w.Kind)
		}
		if err != nil {
			return fmt.Errorf("building widget %q: %w", w.Name, err)
		}
	}
	return nil
}
