package tui

import "github.com/charmbracelet/lipgloss"

// Theme bundles the styles for one of the two color preferences. The
// active theme name persists across runs via the state store.
type Theme struct {
	Name      string
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Meta      lipgloss.Style
	Toast     lipgloss.Style
	Typing    lipgloss.Style
	Help      lipgloss.Style
}

// DarkTheme is the default.
func DarkTheme() Theme {
	return Theme{
		Name:      "dark",
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")),
		Meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
		Toast:     lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236")).Padding(0, 1),
		Typing:    lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// LightTheme mirrors the dark palette on light backgrounds.
func LightTheme() Theme {
	return Theme{
		Name:      "light",
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		Subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("90")),
		Meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Italic(true),
		Toast:     lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("253")).Padding(0, 1),
		Typing:    lipgloss.NewStyle().Foreground(lipgloss.Color("90")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
	}
}

// ThemeByName resolves a persisted theme preference, defaulting to dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}
