// Package imports provides the import history view for the TUI. It can
// also start an import and follow its progress.
package imports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

// historyLimit is the number of ledger entries shown.
const historyLimit = 15

// pollInterval is how often progress is refreshed during an import.
const pollInterval = 500 * time.Millisecond

// View lists recent ledger entries.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	runs   driving.RunHistory
	sync   driving.SyncOrchestrator

	spinner   spinner.Model
	entries   []domain.RunEntry
	loaded    bool
	importing bool
	progress  *driving.SyncStatus
	last      *domain.ImportResult
	err       error
	width     int
	height    int
	now       func() time.Time
}

// NewView creates a new imports view. sync may be nil, in which case
// imports cannot be started from the view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	runs driving.RunHistory,
	sync driving.SyncOrchestrator,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		ctx:     context.Background(),
		styles:  s,
		keymap:  km,
		runs:    runs,
		sync:    sync,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Warning)),
		now:     time.Now,
	}
}

// SetContext sets the context used by service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init loads the import history.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	runs := v.runs
	ctx := v.ctx
	return func() tea.Msg {
		if runs == nil {
			return messages.RunsLoaded{Err: errors.New("run history not available")}
		}
		entries, err := runs.Recent(ctx, historyLimit)
		return messages.RunsLoaded{Entries: entries, Err: err}
	}
}

// StartImport begins an import run unless one is already running.
func (v *View) StartImport() tea.Cmd {
	if v.importing {
		return nil
	}
	if v.sync == nil {
		v.err = errors.New("imports cannot be started here")
		return nil
	}
	v.importing = true
	v.progress = nil
	v.err = nil
	return tea.Batch(v.spinner.Tick, v.runImport(), v.poll())
}

func (v *View) runImport() tea.Cmd {
	sync := v.sync
	ctx := v.ctx
	return func() tea.Msg {
		result, err := sync.Run(ctx)
		return messages.ImportFinished{Result: result, Err: err}
	}
}

func (v *View) poll() tea.Cmd {
	sync := v.sync
	ctx := v.ctx
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		status, err := sync.Status(ctx)
		if err != nil {
			return messages.ImportProgress{}
		}
		return messages.ImportProgress{Status: status}
	})
}

// Update handles messages for the imports view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewProducts} }
		case key.Matches(msg, v.keymap.Reload):
			return v, v.load()
		case key.Matches(msg, v.keymap.Import):
			return v, v.StartImport()
		}

	case messages.RunsLoaded:
		v.loaded = true
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.entries = msg.Entries

	case messages.ImportProgress:
		if !v.importing {
			return v, nil
		}
		if msg.Status != nil && msg.Status.Running {
			v.progress = msg.Status
		}
		return v, v.poll()

	case messages.ImportFinished:
		v.importing = false
		v.progress = nil
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.last = msg.Result
		return v, v.load()

	case spinner.TickMsg:
		if !v.importing {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}
	return v, nil
}

// View renders the import history.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Imports"))
	b.WriteString("\n\n")

	if v.importing {
		b.WriteString(v.spinner.View())
		b.WriteString(" ")
		if v.progress != nil && v.progress.CurrentFile != "" {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Importing %s... %d files, %s products",
				v.progress.CurrentFile, v.progress.FilesProcessed, humanize.Comma(int64(v.progress.RecordsImported)))))
		} else {
			b.WriteString(v.styles.Warning.Render("Starting import..."))
		}
		b.WriteString("\n\n")
	}

	if v.last != nil {
		b.WriteString(v.renderLast())
		b.WriteString("\n\n")
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	switch {
	case !v.loaded:
		b.WriteString(v.styles.Muted.Render("Loading history..."))
	case len(v.entries) == 0:
		b.WriteString(v.styles.Muted.Render("No imports recorded yet."))
	default:
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%-6s %-28s %-10s %10s  %s", "ID", "FILE", "STATUS", "PRODUCTS", "STARTED")))
		b.WriteString("\n")
		for i := range v.entries {
			b.WriteString(v.renderEntry(&v.entries[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	help := "[r] reload  [esc] back"
	if v.sync != nil {
		help = "[s] start import  " + help
	}
	b.WriteString(v.styles.Help.Render(help))
	return b.String()
}

func (v *View) renderLast() string {
	r := v.last
	state := v.styles.Success.Render("completed")
	if !r.Success {
		state = v.styles.Error.Render("failed")
	}
	line := fmt.Sprintf("Last run %s: %s products (%d created, %d updated) from %d files, %d errors",
		shortID(r.RunID),
		humanize.Comma(int64(r.RecordsImported)),
		r.RecordsCreated, r.RecordsUpdated, r.FilesProcessed, len(r.Errors))
	return state + " " + v.styles.Normal.Render(line)
}

func (v *View) renderEntry(e *domain.RunEntry) string {
	name := e.SourceName
	if len(name) > 28 {
		name = name[:25] + "..."
	}
	row := fmt.Sprintf("%-6d %-28s ", e.ID, name)
	status := fmt.Sprintf("%-10s ", e.State)
	rest := fmt.Sprintf("%10s  %s", humanize.Comma(int64(e.RecordsImported)),
		humanize.RelTime(e.StartedAt, v.now(), "ago", "from now"))
	return v.styles.Normal.Render(row) + v.styles.Status(e.State.String()).Render(status) + v.styles.Normal.Render(rest)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Entries returns the loaded ledger entries.
func (v *View) Entries() []domain.RunEntry {
	return v.entries
}

// Importing reports whether an import started from this view is running.
func (v *View) Importing() bool {
	return v.importing
}

// Progress returns the latest progress snapshot of the running import.
func (v *View) Progress() *driving.SyncStatus {
	return v.progress
}

// LastResult returns the outcome of the last import started from this view.
func (v *View) LastResult() *domain.ImportResult {
	return v.last
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
