package controls

import (
	"github.com/coursedeck/playdeck/internal/ui/tui/input"
	"github.com/coursedeck/playdeck/internal/ui/tui/listener"
)

// Rect is an area in terminal cells
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Menu is the settings submenu.  While open it listens for presses anywhere and closes on one outside its bounds.
type Menu struct {
	open   bool
	bounds []Rect
	group  *listener.Group
}

// NewMenu creates a closed menu whose click-outside listener lives on registry
func NewMenu(registry *listener.Registry) *Menu {
	m := &Menu{}
	m.group = registry.Group("settings-click-outside").On(input.TypeMouseDown, func(e listener.Event) {
		if p, ok := e.(input.PointerEvent); ok && !m.Contains(p.X, p.Y) {
			m.Close()
		}
	})
	return m
}

func (m *Menu) IsOpen() bool {
	return m.open
}

func (m *Menu) Open() {
	m.open = true
	m.group.Attach()
}

func (m *Menu) Close() {
	m.open = false
	m.group.Detach()
}

func (m *Menu) Toggle() {
	if m.open {
		m.Close()
		return
	}
	m.Open()
}

// SetBounds records where the menu and its anchor button were drawn.  A press inside any of them is not outside.
func (m *Menu) SetBounds(rects ...Rect) {
	m.bounds = rects
}

func (m *Menu) Contains(x, y int) bool {
	for _, r := range m.bounds {
		if r.Contains(x, y) {
			return true
		}
	}
	return false
}
