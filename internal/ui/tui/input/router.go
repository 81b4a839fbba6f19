// Package input routes keyboard events to playback commands while a native player is mounted.
package input

import (
	"math"

	"github.com/coursedeck/playdeck/internal/log"
	"github.com/coursedeck/playdeck/internal/ui/tui/keybindings"
	"github.com/coursedeck/playdeck/internal/ui/tui/listener"
)

const (
	// SkipSeconds is how far the arrow keys skip
	SkipSeconds = 10
	// VolumeStep is how far the arrow keys move the volume
	VolumeStep = 0.1
)

// Player is the playback surface the router drives
type Player interface {
	TogglePlay() error
	Skip(delta float64) error
	SetVolume(fraction float64) error
	ToggleMute() error
	StepRate(dir int) error
}

// Fullscreen toggles the player window's fullscreen state
type Fullscreen interface {
	Toggle() error
}

// Router turns key events into Player commands.  It is inert for keys typed into a text field.
type Router struct {
	player     Player
	fullscreen Fullscreen
	volume     func() float64
	group      *listener.Group
}

// NewRouter creates a detached router.  volume reports the current volume, used to step it.
func NewRouter(registry *listener.Registry, player Player, fullscreen Fullscreen, volume func() float64) *Router {
	r := &Router{
		player:     player,
		fullscreen: fullscreen,
		volume:     volume,
	}
	r.group = registry.Group("keyboard").On(TypeKeyDown, r.handle)
	return r
}

// Group is the router's listener group, attached on mount and detached on unmount
func (r *Router) Group() *listener.Group {
	return r.group
}

func (r *Router) handle(e listener.Event) {
	event, ok := e.(*KeyEvent)
	if !ok || event.DefaultPrevented() {
		return
	}
	if event.Target.IsTextEntry() {
		return
	}

	action := keybindings.ActionForKey(event.Key, keybindings.ContextPlayback)
	if action == "" {
		return
	}
	event.PreventDefault()

	if err := r.run(action); err != nil {
		log.Warn("Playback command failed", "action", action, "error", err)
	}
}

func (r *Router) run(action keybindings.Action) error {
	switch action {
	case keybindings.ActionTogglePlay:
		return r.player.TogglePlay()
	case keybindings.ActionSkipBack:
		return r.player.Skip(-SkipSeconds)
	case keybindings.ActionSkipForward:
		return r.player.Skip(SkipSeconds)
	case keybindings.ActionVolumeUp:
		return r.player.SetVolume(math.Min(1, stepVolume(r.volume(), VolumeStep)))
	case keybindings.ActionVolumeDown:
		return r.player.SetVolume(math.Max(0, stepVolume(r.volume(), -VolumeStep)))
	case keybindings.ActionToggleFullscreen:
		return r.fullscreen.Toggle()
	case keybindings.ActionToggleMute:
		return r.player.ToggleMute()
	case keybindings.ActionRateDown:
		return r.player.StepRate(-1)
	case keybindings.ActionRateUp:
		return r.player.StepRate(1)
	}
	return nil
}

// stepVolume adds delta and rounds to hundredths so repeated steps land on 0 and 1 exactly
func stepVolume(volume, delta float64) float64 {
	return math.Round((volume+delta)*100) / 100
}
