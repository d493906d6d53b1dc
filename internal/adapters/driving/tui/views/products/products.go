// Package products provides the paged product list view for the TUI.
package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

// View is the paged product list.
type View struct {
	ctx      context.Context
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	products driving.ProductService

	page     *driving.ProductPage
	pageNum  int
	limit    int
	selected int
	loading  bool
	err      error
	width    int
	height   int
}

// NewView creates a new product list view.
func NewView(s *styles.Styles, km *keymap.KeyMap, products driving.ProductService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		ctx:      context.Background(),
		styles:   s,
		keymap:   km,
		products: products,
		pageNum:  1,
		limit:    domain.DefaultPageSize,
	}
}

// SetContext sets the context used by service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init loads the first page.
func (v *View) Init() tea.Cmd {
	return v.load(v.pageNum)
}

// Reload loads the current page again.
func (v *View) Reload() tea.Cmd {
	return v.load(v.pageNum)
}

func (v *View) load(page int) tea.Cmd {
	v.loading = true
	products := v.products
	ctx := v.ctx
	limit := v.limit
	return func() tea.Msg {
		if products == nil {
			return messages.ProductsLoaded{Err: errors.New("product service not available")}
		}
		p, err := products.List(ctx, page, limit)
		return messages.ProductsLoaded{Page: p, Err: err}
	}
}

// Update handles messages for the product list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.ProductsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.page = msg.Page
		if msg.Page != nil {
			v.pageNum = msg.Page.Page
		}
		if v.selected >= v.count() {
			v.selected = max(v.count()-1, 0)
		}
		return v, nil

	case messages.ProductTrashed:
		if msg.Err == nil {
			return v, v.Reload()
		}
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(msg, v.keymap.Down):
		if v.selected < v.count()-1 {
			v.selected++
		}
	case key.Matches(msg, v.keymap.NextPage):
		if v.page != nil && v.pageNum < v.page.TotalPages {
			v.selected = 0
			return v, v.load(v.pageNum + 1)
		}
	case key.Matches(msg, v.keymap.PrevPage):
		if v.pageNum > 1 {
			v.selected = 0
			return v, v.load(v.pageNum - 1)
		}
	case key.Matches(msg, v.keymap.Select):
		if p := v.SelectedProduct(); p != nil {
			product := *p
			return v, func() tea.Msg { return messages.ProductSelected{Product: product} }
		}
	case key.Matches(msg, v.keymap.Reload):
		return v, v.Reload()
	case key.Matches(msg, v.keymap.Imports):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewImports} }
	case key.Matches(msg, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

func (v *View) count() int {
	if v.page == nil {
		return 0
	}
	return len(v.page.Products)
}

// View renders the product list.
func (v *View) View() string {
	var b strings.Builder

	title := "Products"
	if v.page != nil {
		title = fmt.Sprintf("Products (%s)", humanize.Comma(int64(v.page.Total)))
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case v.page == nil:
		b.WriteString(v.styles.Muted.Render("Loading products..."))
	case v.count() == 0:
		b.WriteString(v.styles.Muted.Render("No products yet. Press i to open imports and s to start one."))
	default:
		for i := range v.page.Products {
			b.WriteString(v.renderRow(i, &v.page.Products[i]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Page %d of %d", v.page.Page, max(v.page.TotalPages, 1))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] open  [←/→] page  [i] imports  [r] reload  [q] quit"))
	return b.String()
}

func (v *View) renderRow(index int, p *domain.Product) string {
	name := "(unnamed)"
	if p.ProductName != nil && strings.TrimSpace(*p.ProductName) != "" {
		name = *p.ProductName
	}
	maxName := v.width - 40
	if maxName < 20 {
		maxName = 20
	}
	if len(name) > maxName {
		name = name[:maxName-3] + "..."
	}

	grade := ""
	if p.NutriscoreGrade != nil {
		grade = *p.NutriscoreGrade
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-15s %-10s %s", p.Code, p.Status, name))
	}
	return "  " +
		v.styles.Normal.Render(fmt.Sprintf("%-15s ", p.Code)) +
		v.styles.Status(p.Status.String()).Render(fmt.Sprintf("%-10s ", p.Status)) +
		v.styles.Grade(grade) + " " +
		v.styles.Normal.Render(name)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Page returns the loaded page, or nil before the first load.
func (v *View) Page() *driving.ProductPage {
	return v.page
}

// PageNumber returns the current page number.
func (v *View) PageNumber() int {
	return v.pageNum
}

// SelectedIndex returns the selected row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedProduct returns the selected product, or nil when the page is empty.
func (v *View) SelectedProduct() *domain.Product {
	if v.selected < v.count() {
		return &v.page.Products[v.selected]
	}
	return nil
}

// Loading reports whether a page request is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
