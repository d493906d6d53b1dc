// Package product provides the product detail view for the TUI.
package product

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

// View shows one product and lets the user move it to trash.
type View struct {
	ctx      context.Context
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	products driving.ProductService

	product    *domain.Product
	confirming bool
	err        error
	width      int
	height     int
	now        func() time.Time
}

// NewView creates a new product detail view.
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
		now:      time.Now,
	}
}

// SetContext sets the context used by service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetProduct sets the product to display.
func (v *View) SetProduct(p domain.Product) {
	v.product = &p
	v.confirming = false
	v.err = nil
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.confirming {
			return v.handleConfirmKey(msg)
		}
		return v.handleKey(msg)

	case messages.ProductTrashed:
		if v.product == nil || msg.Code != v.product.Code {
			return v, nil
		}
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		trashed := v.product.WithStatus(domain.ProductStatusTrash)
		v.product = &trashed
		v.err = nil
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewProducts} }
	case key.Matches(msg, v.keymap.Trash):
		if v.product != nil && v.product.Status != domain.ProductStatusTrash {
			v.confirming = true
		}
	}
	return v, nil
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Confirm):
		v.confirming = false
		return v, v.trash(v.product.Code)
	case key.Matches(msg, v.keymap.Cancel):
		v.confirming = false
	}
	return v, nil
}

func (v *View) trash(code domain.ProductCode) tea.Cmd {
	products := v.products
	ctx := v.ctx
	return func() tea.Msg {
		if products == nil {
			return messages.ProductTrashed{Code: code, Err: errors.New("product service not available")}
		}
		return messages.ProductTrashed{Code: code, Err: products.Delete(ctx, code)}
	}
}

// View renders the product.
func (v *View) View() string {
	var b strings.Builder

	if v.product == nil {
		b.WriteString(v.styles.Muted.Render("No product selected."))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[esc] back"))
		return b.String()
	}
	p := v.product

	name := "(unnamed)"
	if p.ProductName != nil && *p.ProductName != "" {
		name = *p.ProductName
	}
	b.WriteString(v.styles.Title.Render(name))
	b.WriteString("\n\n")

	v.writeField(&b, "Code", p.Code.String())
	b.WriteString(v.styles.Label.Render("Status"))
	b.WriteString(v.styles.Status(p.Status.String()).Render(p.Status.String()))
	b.WriteString("\n")
	v.writeField(&b, "Imported", humanize.RelTime(p.ImportedAt, v.now(), "ago", "from now"))

	grade := ""
	if p.NutriscoreGrade != nil {
		grade = *p.NutriscoreGrade
	}
	b.WriteString(v.styles.Label.Render("Nutri-Score"))
	b.WriteString(v.styles.Grade(grade))
	if p.NutriscoreScore != nil {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf(" (%d)", *p.NutriscoreScore)))
	}
	b.WriteString("\n")

	strs := []struct {
		label string
		value *string
	}{
		{"Brands", p.Brands},
		{"Quantity", p.Quantity},
		{"Categories", p.Categories},
		{"Labels", p.Labels},
		{"Stores", p.Stores},
		{"Serving size", p.ServingSize},
		{"Ingredients", p.IngredientsText},
		{"Traces", p.Traces},
		{"URL", p.URL},
	}
	for _, f := range strs {
		if f.value != nil && *f.value != "" {
			v.writeField(&b, f.label, *f.value)
		}
	}
	if p.ServingQuantity != nil {
		v.writeField(&b, "Serving qty", strconv.FormatFloat(*p.ServingQuantity, 'f', -1, 64))
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	}

	b.WriteString("\n\n")
	if v.confirming {
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Move product %s to trash? [y/n]", p.Code)))
		return b.String()
	}
	b.WriteString(v.styles.Help.Render("[d] trash  [esc] back"))
	return b.String()
}

func (v *View) writeField(b *strings.Builder, label, value string) {
	maxLen := v.width - 16
	if maxLen < 20 {
		maxLen = 20
	}
	if len(value) > maxLen {
		value = value[:maxLen-3] + "..."
	}
	b.WriteString(v.styles.Label.Render(label))
	b.WriteString(v.styles.Normal.Render(value))
	b.WriteString("\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Product returns the displayed product.
func (v *View) Product() *domain.Product {
	return v.product
}

// Confirming reports whether the trash prompt is shown.
func (v *View) Confirming() bool {
	return v.confirming
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
