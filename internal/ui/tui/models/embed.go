package models

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/coursedeck/playdeck/internal/ui/tui/styles"
	"github.com/coursedeck/playdeck/internal/ui/tui/util"
)

// embedFrame is the passive frame shown for embedded sources.  The embedded player owns its controls, so nothing here
// reads playback state.
func (m *PlayerModel) embedFrame(width, height int) string {
	boxWidth := min(max(width-4, 20), 90)

	status := styles.Dim.Render("The video plays in its own player window.")
	switch {
	case m.embedErr != nil:
		status = styles.Error.Render(util.TruncateString("Could not open: "+m.embedErr.Error(), boxWidth-4))
	case m.embedOpened:
		status = styles.Info.Render("Opened in your browser.")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.Title.Render("Embedded player"),
		"",
		styles.Url.Render(util.TruncateString(m.src.URL, boxWidth-4)),
		"",
		status,
	)
	return styles.CenteredView(width, height, styles.ContentBox(boxWidth, content, 1))
}
