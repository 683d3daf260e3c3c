package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#AF2F2F", Dark: "#E06C75"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6B7280"}
	colorError  = lipgloss.Color("9")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1)
	cursorStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	completedStyle = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	selectedStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	frameStyle     = lipgloss.NewStyle().Padding(1, 2)
)
