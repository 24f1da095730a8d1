package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wwdc-sessions/internal/search"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

// renderList renders the left panel: search results list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No sessions")
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatResultLine(r, width, i == m.cursor)...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatResultLine formats a single result as two lines:
//
//	line 1: [>] 2021 #10132 title
//	line 2:    track · snippet (dimmed)
func formatResultLine(r search.Result, width int, selected bool) []string {
	head := fmt.Sprintf("%d #%s", r.Year, r.SessionID)

	titleMax := width - 2 - runewidth.StringWidth(head) - 1
	if titleMax < 0 {
		titleMax = 0
	}
	title := strings.ReplaceAll(r.Title, "\n", " ")
	if runewidth.StringWidth(title) > titleMax {
		title = runewidth.Truncate(title, titleMax, "")
	}

	line1 := styleYear.Render(head) + " " + title
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	snippet := strings.NewReplacer("\n", " ", "\t", " ", ">>>", "", "<<<", "").Replace(r.Snippet)
	rest := r.Track + " · " + snippet
	restMax := width - 4
	if restMax < 0 {
		restMax = 0
	}
	if runewidth.StringWidth(rest) > restMax {
		rest = runewidth.Truncate(rest, restMax, "")
	}
	track := r.Track
	if len(rest) < len(track) {
		track = rest
	}
	line2 := "    " + styleTrack.Render(track) + lipgloss.NewStyle().Foreground(colorDim).Render(rest[len(track):])

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
