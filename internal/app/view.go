package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/uikit/internal/widget"
)

const helpText = "Tab focus  Enter/Space activate  Left/Right adjust  d destroy  q quit"

// sliderWidth is the number of cells in a slider track.
const sliderWidth = 20

var (
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleFocus  = tcell.StyleDefault.Reverse(true)
	styleHelp   = tcell.StyleDefault.Dim(true)
	styleStatus = tcell.StyleDefault.Reverse(true)
)

// draw renders the whole screen.
func (app *Application) draw() {
	start := time.Now()

	app.screen.Clear()
	width, height := app.screen.Size()

	app.drawText(0, 0, width, app.cfg.Title, styleTitle)

	focused := app.focused()
	for i, w := range app.tk.Widgets() {
		y := 2 + i
		if y >= height-2 {
			break
		}
		style := tcell.StyleDefault
		prefix := "  "
		if w == focused {
			style = styleFocus
			prefix = "> "
		}
		app.drawText(0, y, width, prefix+renderWidget(w), style)
	}

	if height > 2 {
		app.drawText(0, height-2, width, helpText, styleHelp)
	}
	if height > 1 {
		status := app.status
		if pad := width - len([]rune(status)); pad > 0 {
			status += strings.Repeat(" ", pad)
		}
		app.drawText(0, height-1, width, status, styleStatus)
	}

	app.screen.Show()
	app.metrics.RecordFrame(time.Since(start))
}

// drawText writes s at (x, y), clipped to width.
func (app *Application) drawText(x, y, width int, s string, style tcell.Style) {
	for _, r := range s {
		if x >= width {
			return
		}
		app.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// renderWidget returns the one-line representation of w.
func renderWidget(w widget.Widget) string {
	switch w := w.(type) {
	case *widget.Button:
		return "[ " + w.Label() + " ]"
	case *widget.Checkbox:
		mark := " "
		if w.Checked() {
			mark = "x"
		}
		return "[" + mark + "] " + w.Label()
	case *widget.Slider:
		lo, hi := w.Range()
		filled := (w.Value() - lo) * sliderWidth / (hi - lo)
		track := strings.Repeat("=", filled) + strings.Repeat("-", sliderWidth-filled)
		return w.Label() + " [" + track + "] " + strconv.Itoa(w.Value())
	default:
		return w.Label()
	}
}
