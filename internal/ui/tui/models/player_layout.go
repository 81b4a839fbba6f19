package models

import (
	"github.com/coursedeck/playdeck/internal/playback"
	"github.com/coursedeck/playdeck/internal/ui/tui/controls"
	"github.com/mattn/go-runewidth"
)

const (
	headerHeight = 1
	stripHeight  = 2

	centerButtonWidth  = 14 // including border
	centerButtonHeight = 3
	menuWidth          = 14 // including border

	gearLabel       = "[settings]"
	fullscreenLabel = "[fullscreen]"
	windowedLabel   = "[ windowed ]"
)

// layout is where each hit target of the native view sits, in terminal cells.  View draws from the same rects that
// Update hit-tests against.
type layout struct {
	surface      controls.Rect
	status       controls.Rect
	stage        controls.Rect
	strip        controls.Rect
	track        controls.Rect
	controlsRow  controls.Rect
	centerButton controls.Rect
	gear         controls.Rect
	fullscreen   controls.Rect
	menu         controls.Rect
	menuItems    []controls.Rect
	footer       controls.Rect
}

func computeLayout(width, height int, footerVisible bool) layout {
	var l layout

	footer := 0
	if footerVisible {
		footer = 1
	}

	l.surface = controls.Rect{X: 0, Y: headerHeight, W: width, H: max(height-headerHeight-footer, 0)}
	l.footer = controls.Rect{X: 0, Y: l.surface.Y + l.surface.H, W: width, H: footer}
	l.status = controls.Rect{X: 0, Y: l.surface.Y, W: width, H: 1}

	bottom := l.surface.Y + l.surface.H
	l.strip = controls.Rect{X: 0, Y: bottom - stripHeight, W: width, H: stripHeight}
	l.track = controls.Rect{X: 1, Y: l.strip.Y, W: max(width-2, 0), H: 1}
	l.controlsRow = controls.Rect{X: 0, Y: l.strip.Y + 1, W: width, H: 1}

	stageTop := l.status.Y + 1
	l.stage = controls.Rect{X: 0, Y: stageTop, W: width, H: max(l.strip.Y-stageTop, 0)}

	fsWidth := runewidth.StringWidth(fullscreenLabel)
	gearWidth := runewidth.StringWidth(gearLabel)
	l.fullscreen = controls.Rect{X: max(width-1-fsWidth, 0), Y: l.controlsRow.Y, W: fsWidth, H: 1}
	l.gear = controls.Rect{X: max(l.fullscreen.X-1-gearWidth, 0), Y: l.controlsRow.Y, W: gearWidth, H: 1}

	l.centerButton = controls.Rect{
		X: max((width-centerButtonWidth)/2, 0),
		Y: stageTop + max((l.stage.H-centerButtonHeight)/2, 0),
		W: centerButtonWidth,
		H: centerButtonHeight,
	}

	// Title row plus one row per rate, inside a border
	menuHeight := len(playback.Rates) + 3
	l.menu = controls.Rect{
		X: max(l.gear.X+l.gear.W-menuWidth, 0),
		Y: max(l.strip.Y-menuHeight, stageTop),
		W: menuWidth,
		H: menuHeight,
	}
	l.menuItems = make([]controls.Rect, len(playback.Rates))
	for i := range playback.Rates {
		l.menuItems[i] = controls.Rect{X: l.menu.X + 1, Y: l.menu.Y + 2 + i, W: menuWidth - 2, H: 1}
	}

	return l
}

// rateAt returns the rate whose menu row contains (x, y)
func (l layout) rateAt(x, y int) (float64, bool) {
	for i, r := range l.menuItems {
		if r.Contains(x, y) {
			return playback.Rates[i], true
		}
	}
	return 0, false
}
