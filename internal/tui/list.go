package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fruitcakej/GuardianNews/internal/cache"
)

// articleList holds the articles currently shown. Replace swaps the whole
// list so a row never mixes two fetches.
type articleList struct {
	items []cache.Article
}

func (l *articleList) Replace(articles []cache.Article) {
	l.Clear()
	l.items = append(l.items, articles...)
}

func (l *articleList) Clear() {
	l.items = nil
}

func (l *articleList) Count() int {
	return len(l.items)
}

func (l *articleList) Item(i int) (cache.Article, bool) {
	if i < 0 || i >= len(l.items) {
		return cache.Article{}, false
	}
	return l.items[i], true
}

// Visible returns the items whose title contains search, case-insensitively.
func (l *articleList) Visible(search string) []cache.Article {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return l.items
	}
	var out []cache.Article
	for _, a := range l.items {
		if strings.Contains(strings.ToLower(a.Title), search) {
			out = append(out, a)
		}
	}
	return out
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "undated"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func renderListItem(a cache.Article, section string, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(a.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(a.Title, width-4))
	}

	meta := "  " + itemSectionStyle.Render(section) + " " + itemTimeStyle.Render("· "+relativeTime(a.Published))
	if a.Byline != "" {
		meta += " " + itemBylineStyle.Render("· "+truncateStr(a.Byline, width/3))
	}

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(articles []cache.Article, label func(string) string, cursor, height, width int) string {
	if len(articles) == 0 {
		return centerLine("No matching articles", width, height)
	}

	// two lines per item plus a blank
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(articles) {
		end = len(articles)
		start = max(0, end-visible)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(articles[i], label(articles[i].Section), i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func centerLine(s string, width, height int) string {
	pad := max(0, (width-len(s))/2)
	return strings.Repeat("\n", max(0, height/3)) + strings.Repeat(" ", pad) + s
}
