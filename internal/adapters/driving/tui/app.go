package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/views/imports"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/views/product"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/views/products"
	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	statusBar    *status.Bar
	productsView *products.View
	productView  *product.View
	importsView  *imports.View

	currentView messages.ViewType

	// previousView is restored when the help view is closed.
	previousView messages.ViewType

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		statusBar:    status.NewBar(s),
		productsView: products.NewView(s, km, ports.Products),
		productView:  product.NewView(s, km, ports.Products),
		importsView:  imports.NewView(s, km, ports.Runs, ports.Sync),
		currentView:  messages.ViewProducts,
	}
	a.updateHints()
	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.productsView.SetContext(ctx)
	a.productView.SetContext(ctx)
	a.importsView.SetContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	a.statusBar.SetState(status.StateLoading)
	return tea.Batch(
		tea.SetWindowTitle("foodsync"),
		a.productsView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.ProductsLoaded:
		a.productsView, cmd = a.productsView.Update(msg)
		a.reportResult(msg.Err, "")
		return a, cmd

	case messages.ProductSelected:
		a.productView.SetProduct(msg.Product)
		return a, a.switchTo(messages.ViewProduct)

	case messages.ProductTrashed:
		var listCmd tea.Cmd
		a.productView, cmd = a.productView.Update(msg)
		a.productsView, listCmd = a.productsView.Update(msg)
		a.reportResult(msg.Err, fmt.Sprintf("Product %s moved to trash", msg.Code))
		return a, tea.Batch(cmd, listCmd)

	case messages.RunsLoaded:
		a.importsView, cmd = a.importsView.Update(msg)
		if !a.importsView.Importing() {
			a.reportResult(msg.Err, "")
		}
		return a, cmd

	case messages.ImportProgress:
		a.importsView, cmd = a.importsView.Update(msg)
		if p := a.importsView.Progress(); p != nil {
			a.statusBar.SetState(status.StateImporting)
			a.statusBar.SetMessage(fmt.Sprintf("Importing %s", p.CurrentFile))
			a.statusBar.SetProgress(p.FilesProcessed, p.RecordsImported)
		}
		return a, cmd

	case messages.ImportFinished:
		a.importsView, cmd = a.importsView.Update(msg)
		a.reportResult(msg.Err, importSummary(msg.Result))
		// Products may have changed.
		return a, tea.Batch(cmd, a.productsView.Reload())

	case spinner.TickMsg:
		a.importsView, cmd = a.importsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.reportResult(msg.Err, "")
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Global quit with ctrl+c
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	if a.currentView == messages.ViewHelp {
		if key.Matches(msg, a.keymap.Back, a.keymap.Help) {
			return a, a.switchTo(a.previousView)
		}
		return a, nil
	}
	if key.Matches(msg, a.keymap.Help) && !a.productView.Confirming() {
		a.previousView = a.currentView
		return a, a.switchTo(messages.ViewHelp)
	}

	switch a.currentView {
	case messages.ViewProducts:
		a.productsView, cmd = a.productsView.Update(msg)
	case messages.ViewProduct:
		a.productView, cmd = a.productView.Update(msg)
	case messages.ViewImports:
		a.importsView, cmd = a.importsView.Update(msg)
		if a.importsView.Importing() {
			a.statusBar.SetState(status.StateImporting)
			a.statusBar.SetMessage("")
		}
	case messages.ViewHelp:
		// handled above
	}
	return a, cmd
}

// switchTo changes the active view and returns its initial command.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	a.updateHints()

	switch view {
	case messages.ViewProducts:
		return a.productsView.Reload()
	case messages.ViewImports:
		return a.importsView.Init()
	case messages.ViewProduct, messages.ViewHelp:
		// Nothing to load
	}
	return nil
}

func (a *App) updateHints() {
	switch a.currentView {
	case messages.ViewProducts:
		a.statusBar.SetHints(a.keymap.ProductsHelp())
	case messages.ViewProduct:
		a.statusBar.SetHints(a.keymap.ProductHelp())
	case messages.ViewImports:
		a.statusBar.SetHints(a.keymap.ImportsHelp())
	case messages.ViewHelp:
		a.statusBar.SetHints(a.keymap.ShortHelp())
	}
}

// reportResult shows err in the status bar, or msg when err is nil.
// The status bar keeps showing an import that is still running.
func (a *App) reportResult(err error, msg string) {
	if err != nil {
		a.err = err
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(err.Error())
		return
	}
	if a.importsView.Importing() {
		return
	}
	a.err = nil
	a.statusBar.SetState(status.StateReady)
	a.statusBar.SetMessage(msg)
}

func importSummary(r *domain.ImportResult) string {
	if r == nil {
		return ""
	}
	if !r.Success {
		if err := r.Err(); err != nil {
			return "Import failed: " + err.Error()
		}
		return "Import failed"
	}
	return fmt.Sprintf("Import complete: %d products from %d files", r.RecordsImported, r.FilesProcessed)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewProduct:
		body = a.productView.View()
	case messages.ViewImports:
		body = a.importsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.productsView.View()
	}

	// Pin the status bar to the bottom line.
	lines := strings.Count(body, "\n") + 1
	if pad := a.height - lines - 1; pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return body + "\n" + a.statusBar.View()
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI and blocks until it exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.WithContext(ctx)
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// StatusBar returns the status bar component.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its first window size.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.statusBar.SetWidth(width)
	// The status bar takes the last line.
	a.productsView.SetDimensions(width, height-1)
	a.productView.SetDimensions(width, height-1)
	a.importsView.SetDimensions(width, height-1)
}
