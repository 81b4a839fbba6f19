// Package fullscreen asks the player window to enter or leave fullscreen and tracks the state the window reports back.
package fullscreen

import (
	"errors"
	"fmt"

	"github.com/coursedeck/playdeck/internal/log"
	"github.com/coursedeck/playdeck/internal/ui/tui/listener"
)

// ErrUnsupported is returned by Toggle when the container offers no fullscreen capability
var ErrUnsupported = errors.New("fullscreen not supported by player window")

// ChangeEvents are the names a container may report a fullscreen change under, one per capability.  They are
// registered and torn down together.
var ChangeEvents = []string{
	"fullscreenchange",
	"fullscreen",
	"property-change:fullscreen",
	"toggle-fullscreen",
}

// ChangeEvent is a container's report of its fullscreen state.  Type is the name it was reported under.
type ChangeEvent struct {
	Name   string
	Active bool
}

func (e ChangeEvent) Type() string { return e.Name }

type requester interface {
	RequestFullscreen() error
	ExitFullscreen() error
}

type setter interface {
	SetFullscreen(active bool) error
}

type cycler interface {
	CycleProperty(name string) error
}

type toggler interface {
	ToggleFullscreen() error
}

type capability struct {
	name  string
	probe func(container any) (func(enter bool) error, bool)
}

// capabilities is probed in order, first match wins
var capabilities = []capability{
	{
		name: "request/exit",
		probe: func(c any) (func(bool) error, bool) {
			r, ok := c.(requester)
			if !ok {
				return nil, false
			}
			return func(enter bool) error {
				if enter {
					return r.RequestFullscreen()
				}
				return r.ExitFullscreen()
			}, true
		},
	},
	{
		name: "set",
		probe: func(c any) (func(bool) error, bool) {
			s, ok := c.(setter)
			if !ok {
				return nil, false
			}
			return s.SetFullscreen, true
		},
	},
	{
		name: "cycle",
		probe: func(c any) (func(bool) error, bool) {
			cy, ok := c.(cycler)
			if !ok {
				return nil, false
			}
			return func(bool) error { return cy.CycleProperty("fullscreen") }, true
		},
	},
	{
		name: "toggle",
		probe: func(c any) (func(bool) error, bool) {
			t, ok := c.(toggler)
			if !ok {
				return nil, false
			}
			return func(bool) error { return t.ToggleFullscreen() }, true
		},
	},
}

// Adapter drives one container.  Active only changes when the container reports a change.
type Adapter struct {
	active bool
	method string
	invoke func(enter bool) error
	group  *listener.Group
}

// New probes container once and builds the change listener group on registry.  The group starts detached.
func New(registry *listener.Registry, container any) *Adapter {
	a := &Adapter{}
	for _, c := range capabilities {
		if invoke, ok := c.probe(container); ok {
			a.method, a.invoke = c.name, invoke
			break
		}
	}
	if a.invoke == nil {
		log.Debug("Player window has no fullscreen capability", "container", fmt.Sprintf("%T", container))
	}

	a.group = registry.Group("fullscreen-change")
	for _, name := range ChangeEvents {
		a.group.On(name, a.onChange)
	}
	return a
}

func (a *Adapter) onChange(e listener.Event) {
	if change, ok := e.(ChangeEvent); ok {
		a.active = change.Active
	}
}

// Group is the change listener group, attached on mount and detached on unmount
func (a *Adapter) Group() *listener.Group {
	return a.group
}

func (a *Adapter) Active() bool {
	return a.active
}

// Method names the capability in use, empty when unsupported
func (a *Adapter) Method() string {
	return a.method
}

// Toggle requests the opposite of the last reported state.  The request may be ignored by the window.
func (a *Adapter) Toggle() error {
	if a.invoke == nil {
		log.Warn("Fullscreen requested but not supported")
		return ErrUnsupported
	}
	if err := a.invoke(!a.active); err != nil {
		log.Warn("Fullscreen request failed", "method", a.method, "error", err)
		return fmt.Errorf("fullscreen request failed: %w", err)
	}
	return nil
}
