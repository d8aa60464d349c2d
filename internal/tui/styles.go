package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("39")  // blue
	colorAccent  = lipgloss.Color("205") // pink
	colorError   = lipgloss.Color("196")
	colorMuted   = lipgloss.Color("241")
	colorUser    = lipgloss.Color("86")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	errorBannerStyle = lipgloss.NewStyle().
				Foreground(colorError).
				Bold(true).
				Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorUser).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	focusedFieldStyle = lipgloss.NewStyle().
				Foreground(colorPrimary)

	blurredFieldStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	formBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(1, 2)
)
