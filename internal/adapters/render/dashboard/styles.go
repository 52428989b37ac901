package dashboard

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	label      lipgloss.Style
	value      lipgloss.Style
	unit       lipgloss.Style
	warning    lipgloss.Style
	alert      lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	activity   lipgloss.Style
	unread     lipgloss.Style
	read       lipgloss.Style
	footer     lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35")),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(12),
		value:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		unit:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		alert:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		activity:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		unread:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		read:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		footer:     lipgloss.NewStyle().Faint(true).MarginTop(1),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
