// Package status provides the status bar shown under every view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/styles"
)

// State is what the bar reports on its left side.
type State string

const (
	StateReady     State = "ready"
	StateLoading   State = "loading"
	StateImporting State = "importing"
	StateError     State = "error"
)

const hintSeparator = " | "

// Bar shows the application state on the left and key hints on the right.
// Hints that do not fit the width are dropped from the end.
type Bar struct {
	styles  *styles.Styles
	hints   []key.Binding
	state   State
	message string
	width   int

	// files and products are the running totals of an import.
	files    int
	products int
}

// NewBar creates a status bar 80 columns wide in the ready state.
func NewBar(s *styles.Styles) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Bar{styles: s, state: StateReady, width: 80}
}

// View renders the bar.
func (b *Bar) View() string {
	left := b.left()
	room := b.width - lipgloss.Width(left) - 3
	right := b.styles.Muted.Render(fitHints(b.hints, room))

	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) left() string {
	switch b.state {
	case StateLoading:
		return b.styles.Muted.Render("Loading...")
	case StateImporting:
		return b.styles.Warning.Render(b.importing())
	case StateError:
		if b.message == "" {
			return b.styles.Error.Render("Error")
		}
		return b.styles.Error.Render("Error: " + b.message)
	case StateReady:
		if b.message != "" {
			return b.styles.Normal.Render(b.message)
		}
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) importing() string {
	msg := b.message
	if msg == "" {
		msg = "Importing..."
	}
	if b.files == 0 && b.products == 0 {
		return msg
	}
	return fmt.Sprintf("%s · %s · %s products", msg,
		english.Plural(b.files, "file", "files"), humanize.Comma(int64(b.products)))
}

// fitHints joins as many hints as fit in width columns.
func fitHints(hints []key.Binding, width int) string {
	var out string
	for _, h := range hints {
		help := h.Help()
		next := help.Key + ": " + help.Desc
		if out != "" {
			next = out + hintSeparator + next
		}
		if lipgloss.Width(next) > width {
			break
		}
		out = next
	}
	return out
}

// SetState sets the state. Leaving the importing state clears the totals.
func (b *Bar) SetState(state State) {
	if state != StateImporting {
		b.files, b.products = 0, 0
	}
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the text shown for the current state.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetProgress records the totals of the running import.
func (b *Bar) SetProgress(files, products int) {
	b.files, b.products = files, products
}

// SetHints sets the key bindings shown on the right.
func (b *Bar) SetHints(hints []key.Binding) {
	b.hints = hints
}

// SetWidth sets the bar width in columns.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the bar width.
func (b *Bar) Width() int {
	return b.width
}

// Clear returns the bar to the ready state with no message.
func (b *Bar) Clear() {
	b.SetState(StateReady)
	b.message = ""
}
