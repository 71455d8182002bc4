package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	account    lipgloss.Style
	role       lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	cacheKey   lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	loggedIn   lipgloss.Style
	pending    lipgloss.Style
	loggedOut  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		role:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		cacheKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		loggedIn:   lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		pending:    lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		loggedOut:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
