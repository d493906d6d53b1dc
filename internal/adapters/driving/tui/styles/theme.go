// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Bar        lipgloss.Color

	// Grades colours Nutri-Score grades a to e.
	Grades map[string]lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#43A047"),
		Secondary:  lipgloss.Color("#FFB300"),
		Foreground: lipgloss.Color("#E0E0E0"),
		Muted:      lipgloss.Color("#757575"),
		Success:    lipgloss.Color("#66BB6A"),
		Warning:    lipgloss.Color("#FFCA28"),
		Error:      lipgloss.Color("#EF5350"),
		Bar:        lipgloss.Color("#212121"),
		Grades: map[string]lipgloss.Color{
			"a": lipgloss.Color("#038141"),
			"b": lipgloss.Color("#85BB2F"),
			"c": lipgloss.Color("#FECB02"),
			"d": lipgloss.Color("#EE8100"),
			"e": lipgloss.Color("#E63E11"),
		},
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Normal    lipgloss.Style
	Muted     lipgloss.Style
	Label     lipgloss.Style
	Selected  lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	StatusBar lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme selects the default.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(14),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Status returns the style for a product or run status.
func (s *Styles) Status(status string) lipgloss.Style {
	switch status {
	case "published", "completed":
		return s.Success
	case "draft", "running":
		return s.Warning
	case "failed":
		return s.Error
	default:
		return s.Muted
	}
}

// Grade renders a Nutri-Score grade as a coloured badge, or "-" when unknown.
func (s *Styles) Grade(grade string) string {
	g := strings.ToLower(strings.TrimSpace(grade))
	c, ok := s.theme.Grades[g]
	if !ok {
		return s.Muted.Render("-")
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(c).
		Render(strings.ToUpper(g))
}
