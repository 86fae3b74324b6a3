package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors used by the browser.
type Theme struct {
	Name string

	Surface     string
	SelectionBg string
	Border      string

	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string
}

// Styles holds the lipgloss styles derived from a Theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header   lipgloss.Style
	Selected lipgloss.Style
	Detail   lipgloss.Style
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true).
			PaddingBottom(1),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.Text)).
			Bold(true),

		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
	}
}

var themeOrder = []string{"dark", "light"}

var themes = map[string]Theme{
	"dark":  darkTheme(),
	"light": lightTheme(),
}

// GetTheme returns the named theme, falling back to dark.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return darkTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

func darkTheme() Theme {
	return Theme{
		Name:        "dark",
		Surface:     "#192330",
		SelectionBg: "#2b3b51",
		Border:      "#39506d",
		Text:        "#cdcecf",
		Muted:       "#738091",
		Accent:      "#86abdc",
		Success:     "#81b29a",
		Warning:     "#dbc074",
		Danger:      "#c94f6d",
	}
}

func lightTheme() Theme {
	return Theme{
		Name:        "light",
		Surface:     "#f6f2ee",
		SelectionBg: "#e7d2be",
		Border:      "#aab0ad",
		Text:        "#3d2b5a",
		Muted:       "#837a72",
		Accent:      "#287980",
		Success:     "#396847",
		Warning:     "#ac5402",
		Danger:      "#a5222f",
	}
}
