package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLogLevel parses a level name. Unknown names fall back to info.
func ParseLogLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum level written.
	Level zerolog.Level

	// File receives the log when set. It is opened for appending.
	File string

	// Output receives the log when File is empty. A nil Output disables
	// logging since the terminal is owned by the screen.
	Output io.Writer
}

// nopCloser closes nothing.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger creates the application logger. The returned closer releases
// the log file, if any.
func NewLogger(cfg LoggerConfig) (zerolog.Logger, io.Closer, error) {
	var out io.Writer
	var closer io.Closer = nopCloser{}

	switch {
	case cfg.File != "":
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = f, f
	case cfg.Output != nil:
		out = cfg.Output
	default:
		return zerolog.Nop(), closer, nil
	}

	l := zerolog.New(out).
		Level(cfg.Level).
		With().
		Timestamp().
		Str("app", "uikit").
		Logger()
	return l, closer, nil
}

// WithComponent returns a child logger tagged with component.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// Logger returns the application logger.
func (app *Application) Logger() zerolog.Logger {
	return app.logger
}

// logComponentError logs an error with component context.
func (app *Application) logComponentError(component string, err error) {
	if err != nil {
		app.logger.Error().Str("component", component).Err(err).Msg("component error")
	}
}

// logDuration logs at debug level how long an operation took.
func (app *Application) logDuration(op string, start time.Time) {
	app.logger.Debug().Str("op", op).Dur("took", time.Since(start)).Msg("timing")
}
