package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type statusInfo struct {
	shown    int
	total    int
	order    string
	loading  bool
	search   string
	hints    string
	spinner  string
	errorMsg string
}

func renderStatusBar(s statusInfo, width int) string {
	if s.errorMsg != "" {
		return statusBarStyle.Width(width).Render(errorStyle.Render(s.errorMsg))
	}

	left := fmt.Sprintf(" %d articles", s.total)
	if s.search != "" {
		left = fmt.Sprintf(" %d/%d articles · %q", s.shown, s.total, s.search)
	}
	if s.order != "" {
		left += " · " + s.order
	}
	if s.loading {
		left = s.spinner + left + " (loading...)"
	}

	right := " " + s.hints + " "

	gap := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "
	gap := max(0, width-lipgloss.Width(right))
	return statusBarStyle.Width(width).Render(fmt.Sprintf("%*s", gap, "") + right)
}
