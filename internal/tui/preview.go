package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/wwdc-sessions/internal/index"
	"github.com/Zuo-Peng/wwdc-sessions/internal/render"
	"github.com/Zuo-Peng/wwdc-sessions/internal/search"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	key     string
	content string
	err     error
}

// loadPreviewCmd returns a tea.Cmd that renders the session preview async.
func loadPreviewCmd(db *index.DB, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, err := render.RenderSession(db, r.Year, r.SessionID, render.Options{
			Width: width,
			Query: query,
		})
		return previewRenderedMsg{
			key:     previewCacheKey(r),
			content: content,
			err:     err,
		}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
