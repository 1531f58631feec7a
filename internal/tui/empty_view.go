package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var masthead = []string{
	`┏━╸╻ ╻┏━┓┏━┓╺┳┓╻┏━┓┏┓╻`,
	`┃╺┓┃ ┃┣━┫┣┳┛ ┃┃┃┣━┫┃┗┫`,
	`┗━┛┗━┛╹ ╹╹┗╸╺┻┛╹╹ ╹╹ ╹`,
}

// renderEmptyState draws the masthead with a message below it. Used for
// the offline and no-data screens.
func renderEmptyState(width, height int, title string, hints ...string) string {
	logoStyle := lipgloss.NewStyle().Foreground(colorPrimary)

	var lines []string
	for _, l := range masthead {
		lines = append(lines, logoStyle.Render(l))
	}
	lines = append(lines, "", "", emptyTitleStyle.Render(title))
	if len(hints) > 0 {
		lines = append(lines, "")
		for _, h := range hints {
			lines = append(lines, emptyHintStyle.Render(h))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	contentHeight := strings.Count(content, "\n") + 1
	topPad := max(0, (height-contentHeight)/3)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		strings.Repeat("\n", topPad)+content)
}
