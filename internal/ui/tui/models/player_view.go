package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/coursedeck/playdeck/internal/playback"
	"github.com/coursedeck/playdeck/internal/ui/tui/components"
	"github.com/coursedeck/playdeck/internal/ui/tui/controls"
	kb "github.com/coursedeck/playdeck/internal/ui/tui/keybindings"
	"github.com/coursedeck/playdeck/internal/ui/tui/styles"
	"github.com/coursedeck/playdeck/internal/ui/tui/util"
)

// View renders the header, the player surface and the key help footer
func (m *PlayerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}

	l := m.layout
	rows := make([]string, l.surface.H)

	if m.CurrentView() == ViewEmbedded {
		placeBlock(rows, l.surface, l.surface, m.embedFrame(l.surface.W, l.surface.H))
	} else {
		m.renderNative(rows)
	}

	var b strings.Builder
	b.WriteString(styles.Header(m.width, util.TruncateString(m.titleText(), m.width-2)))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(row)
	}
	if l.footer.H > 0 {
		b.WriteString("\n")
		b.WriteString(components.KeyBindingsBar(m.width, components.BindingsFor(m.helpContexts()...)))
	}
	return b.String()
}

func (m *PlayerModel) titleText() string {
	if m.src.Title != "" {
		return m.src.Title
	}
	return "playdeck"
}

func (m *PlayerModel) helpContexts() []kb.ContextName {
	switch {
	case m.modal == ModalJump:
		return []kb.ContextName{kb.ContextJumpPrompt}
	case m.CurrentView() == ViewEmbedded:
		return []kb.ContextName{kb.ContextEmbedded, kb.ContextGlobal}
	case m.interactive():
		return []kb.ContextName{kb.ContextPlayback, kb.ContextPlayerView, kb.ContextGlobal}
	default:
		return []kb.ContextName{kb.ContextGlobal}
	}
}

func (m *PlayerModel) renderNative(rows []string) {
	l := m.layout
	placeBlock(rows, l.surface, l.status, m.statusLine(l.status.W))

	switch m.CurrentView() {
	case ViewLoading:
		placeBlock(rows, l.surface, l.stage, m.loading.View())
		return
	case ViewError:
		placeBlock(rows, l.surface, l.stage, m.errorBox(l.stage.W, l.stage.H))
		return
	}

	if !m.controls.Visible() {
		return
	}

	if m.menu.IsOpen() {
		placeBlock(rows, l.surface, l.menu, m.settingsMenu())
	} else {
		placeBlock(rows, l.surface, l.centerButton, m.centerButton())
	}

	ctx := m.machine.Context()
	placeBlock(rows, l.surface, l.track, m.progress.ViewAs(ctx.ProgressFraction()))
	placeBlock(rows, l.surface, l.controlsRow, m.controlsLine())
}

func (m *PlayerModel) statusLine(width int) string {
	if m.modal == ModalJump {
		return " " + m.jump.View()
	}

	parts := []string{"mpv"}
	if m.machine != nil {
		parts = append(parts, m.machine.Context().Status().String())
	}
	if m.fullscreen != nil && m.fullscreen.Active() {
		parts = append(parts, "fullscreen")
	}
	line := " " + strings.Join(parts, " · ")
	if m.notice != "" {
		line += "  " + m.notice
	}
	return styles.Dim.Render(util.TruncateString(line, width))
}

func (m *PlayerModel) errorBox(width, height int) string {
	message := "Playback failed"
	if err := m.machine.Context().Err(); err != nil {
		message = err.Error()
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.Error.Render("Playback failed"),
		"",
		styles.Info.Render(util.TruncateString(message, max(width-8, 10))),
		"",
		styles.Dim.Render("Press q to quit"),
	)
	return styles.CenteredView(width, height, styles.ContentBox(min(max(width-4, 20), 70), content, 1))
}

func (m *PlayerModel) centerButton() string {
	label := "▶  Play"
	if m.playing() {
		label = "❚❚ Pause"
	}
	return styles.CenterButton.Width(centerButtonWidth - 2).Render(label)
}

func (m *PlayerModel) controlsLine() string {
	ctx := m.machine.Context()

	icon := "▶"
	if m.playing() {
		icon = "❚❚"
	}

	volume := fmt.Sprintf("vol %d%%", int(math.Round(ctx.Volume()*100)))
	if ctx.Muted() {
		volume = "muted"
	}

	left := fmt.Sprintf(" %s  %s / %s   %s   %s",
		icon,
		playback.FormatTime(ctx.CurrentTime()),
		playback.FormatTime(ctx.Duration()),
		volume,
		playback.FormatRate(ctx.Rate()),
	)

	gear := gearLabel
	if m.menu.IsOpen() {
		gear = styles.MenuSelected.Render(gearLabel)
	}
	fs := fullscreenLabel
	if m.fullscreen.Active() {
		fs = windowedLabel
	}

	return styles.ControlStrip.Render(util.PadRight(left, m.layout.gear.X)) + gear + " " + fs
}

func (m *PlayerModel) settingsMenu() string {
	current := m.machine.Context().Rate()
	lines := []string{styles.Dim.Render("Speed")}
	for _, rate := range playback.Rates {
		label := "  " + playback.FormatRate(rate)
		if rate == current {
			label = styles.MenuSelected.Render("• " + playback.FormatRate(rate))
		}
		lines = append(lines, label)
	}
	return styles.Menu.Width(menuWidth - 2).Render(strings.Join(lines, "\n"))
}

// placeBlock writes block into rows at rect, which is in screen coordinates.  surface gives the screen position of
// rows[0].  Rows outside the surface are dropped.
func placeBlock(rows []string, surface, rect controls.Rect, block string) {
	for i, line := range strings.Split(block, "\n") {
		y := rect.Y + i - surface.Y
		if y < 0 || y >= len(rows) || i >= max(rect.H, 1) {
			continue
		}
		rows[y] = strings.Repeat(" ", max(rect.X, 0)) + line
	}
}
