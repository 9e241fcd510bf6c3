package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("#8BC34A")
	destructive = lipgloss.Color("#e53935")
	muted       = lipgloss.Color("#8a94a6")
)

type styles struct {
	Title  lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
	Prompt lipgloss.Style
	Footer lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		Status: lipgloss.NewStyle().Foreground(muted),
		Error:  lipgloss.NewStyle().Foreground(destructive),
		Prompt: lipgloss.NewStyle().Bold(true).Foreground(destructive),
		Footer: lipgloss.NewStyle().MarginTop(1),
	}
}
