package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fruitcakej/GuardianNews/internal/config"
	"github.com/fruitcakej/GuardianNews/internal/prefs"
)

const (
	rowPageSize = iota
	rowOrderBy
	firstSectionRow
)

// settingsScreen edits the stored preferences. It never triggers a fetch
// itself; the store's change listener does.
type settingsScreen struct {
	cursor int
}

func (s *settingsScreen) rowCount(cfg *config.Config) int {
	return firstSectionRow + len(cfg.Sections)
}

func (a *App) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &a.settings
	var err error

	switch msg.String() {
	case "esc", "s", "q":
		a.mode = modeList
		return a, nil
	case "j", "down":
		if s.cursor < s.rowCount(a.cfg)-1 {
			s.cursor++
		}
		return a, nil
	case "k", "up":
		if s.cursor > 0 {
			s.cursor--
		}
		return a, nil
	case "l", "right", " ", "space", "enter":
		err = a.adjustSetting(s.cursor, 1)
	case "h", "left":
		err = a.adjustSetting(s.cursor, -1)
	case "x":
		_, err = a.prefs.Reset()
	}

	if err != nil {
		a.logger.Warn("saving preference failed", "error", err)
		a.err = err
	}
	return a, nil
}

func (a *App) adjustSetting(row, step int) error {
	v := a.prefs.Values()
	var err error

	switch row {
	case rowPageSize:
		cur, _ := strconv.Atoi(v.PageSize)
		next := cycle(a.cfg.PageSizes, cur, step)
		_, err = a.prefs.SetPageSize(strconv.Itoa(next))
	case rowOrderBy:
		values := make([]string, len(a.cfg.OrderBy))
		for i, o := range a.cfg.OrderBy {
			values[i] = o.Value
		}
		_, err = a.prefs.SetOrderBy(cycle(values, v.OrderBy, step))
	default:
		i := row - firstSectionRow
		if i < 0 || i >= len(a.cfg.Sections) {
			return nil
		}
		_, err = a.prefs.ToggleSection(a.cfg.Sections[i].Value)
	}
	return err
}

// cycle steps through opts from cur, wrapping at both ends. An unknown cur
// starts from the first (or last, stepping back) option.
func cycle[T comparable](opts []T, cur T, step int) T {
	n := len(opts)
	if n == 0 {
		return cur
	}
	idx := slices.Index(opts, cur)
	if idx < 0 {
		if step < 0 {
			return opts[n-1]
		}
		return opts[0]
	}
	return opts[((idx+step)%n+n)%n]
}

func (a *App) renderSettings() string {
	s := a.settings
	selected := a.prefs.Stored().Sections

	row := func(i int, label, value string) string {
		cursor := "  "
		if s.cursor == i {
			cursor = settingsCursorStyle.Render("> ")
		}
		return cursor + settingsLabelStyle.Render(fmt.Sprintf("%-20s", label)) + value
	}

	lines := []string{
		settingsTitleStyle.Render("Settings"),
		"",
		row(rowPageSize, "Articles per page", settingsValueStyle.Render("‹ "+a.prefs.Summary(prefs.KeyPageSize)+" ›")),
		row(rowOrderBy, "Order by", settingsValueStyle.Render("‹ "+a.prefs.Summary(prefs.KeyOrderBy)+" ›")),
		"",
		"  " + settingsLabelStyle.Render("Sections") + "  " + helpDimStyle.Render(a.prefs.Summary(prefs.KeySections)),
	}

	// keep the cursor in view when the catalogue is taller than the screen
	window := max(3, a.height-16)
	start := 0
	if cur := s.cursor - firstSectionRow; cur >= window {
		start = cur - window + 1
	}
	end := min(len(a.cfg.Sections), start+window)

	for i := start; i < end; i++ {
		opt := a.cfg.Sections[i]
		box := "[ ]"
		if slices.Contains(selected, opt.Value) {
			box = settingsCheckedStyle.Render("[x]")
		}
		lines = append(lines, row(firstSectionRow+i, "  "+box+" "+opt.Name, ""))
	}
	if end < len(a.cfg.Sections) {
		lines = append(lines, helpDimStyle.Render(fmt.Sprintf("    … %d more", len(a.cfg.Sections)-end)))
	}

	lines = append(lines, "", helpDimStyle.Render("Changes are saved immediately. No selection uses the default sections."))

	card := settingsCardStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, card)
}
