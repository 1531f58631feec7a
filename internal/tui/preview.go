package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fruitcakej/GuardianNews/internal/cache"
)

func renderPreview(article *cache.Article, section string, width, height, scroll int) string {
	if article == nil {
		return centerLine("Select an article", width, height)
	}

	contentWidth := max(10, width-2)

	title := previewTitleStyle.Width(contentWidth).Render(article.Title)

	meta := section
	if !article.Published.IsZero() {
		meta += " · " + article.Published.Local().Format("Mon 2 Jan 2006, 15:04")
	}
	parts := []string{title, previewMetaStyle.Render(meta)}
	if article.Byline != "" {
		parts = append(parts, previewBylineStyle.Render("By "+article.Byline))
	}

	desc := article.TrailText
	if desc == "" {
		desc = "(No summary available)"
	}
	parts = append(parts, "", previewBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth)), "")

	if article.Thumbnail != "" {
		parts = append(parts, previewLinkStyle.Width(contentWidth).Render(fmt.Sprintf("Image: %s", article.Thumbnail)))
	}
	parts = append(parts, previewLinkStyle.Width(contentWidth).Render("Read more: "+article.WebURL))

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
