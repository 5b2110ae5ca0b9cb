// Package ui is the terminal view of the pantry: a searchable item list with
// add/remove actions and an "add new item" modal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme names accepted by PANTRY_THEME.
const (
	ThemePantry = "pantry"
	ThemeLight  = "light"
)

// Theme holds one color scheme.
type Theme struct {
	Name       string
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Danger     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// PantryTheme is the dark slate palette with green add and red remove.
func PantryTheme() Theme {
	return Theme{
		Name:       ThemePantry,
		Background: lipgloss.Color("#2f3940"),
		Foreground: lipgloss.Color("#FFFFFF"),
		Primary:    lipgloss.Color("#0A9809"),
		Danger:     lipgloss.Color("#D40404"),
		Muted:      lipgloss.Color("#9AA5B1"),
		Border:     lipgloss.Color("#46525C"),
		IsDark:     true,
	}
}

// LightTheme keeps the action colors on a light background.
func LightTheme() Theme {
	return Theme{
		Name:       ThemeLight,
		Background: lipgloss.Color("#F8F9FA"),
		Foreground: lipgloss.Color("#212529"),
		Primary:    lipgloss.Color("#0A9809"),
		Danger:     lipgloss.Color("#D40404"),
		Muted:      lipgloss.Color("#6C757D"),
		Border:     lipgloss.Color("#DEE2E6"),
	}
}

// ThemeByName resolves a configured theme name.
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ThemePantry:
		return PantryTheme(), nil
	case ThemeLight:
		return LightTheme(), nil
	default:
		return Theme{}, fmt.Errorf("unknown theme %q (want %s or %s)", name, ThemePantry, ThemeLight)
	}
}

// Styles holds the rendered components for one theme.
type Styles struct {
	Theme Theme

	App          lipgloss.Style
	Title        lipgloss.Style
	Search       lipgloss.Style
	Row          lipgloss.Style
	SelectedRow  lipgloss.Style
	Quantity     lipgloss.Style
	AddAction    lipgloss.Style
	RemoveAction lipgloss.Style
	Modal        lipgloss.Style
	Status       lipgloss.Style
	Error        lipgloss.Style
	Help         lipgloss.Style
}

// NewStyles builds the styles for theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		App: lipgloss.NewStyle().
			Background(theme.Background).
			Foreground(theme.Foreground).
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),
		Search: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Row: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1),
		SelectedRow: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Background(theme.Border).
			Bold(true).
			Padding(0, 1),
		Quantity: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Width(6).
			Align(lipgloss.Right),
		AddAction: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		RemoveAction: lipgloss.NewStyle().
			Foreground(theme.Danger).
			Bold(true),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(1, 2).
			MarginTop(1),
		Status: lipgloss.NewStyle().
			Foreground(theme.Muted).
			MarginTop(1),
		Error: lipgloss.NewStyle().
			Foreground(theme.Danger).
			MarginTop(1),
		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}
