// Package listener is the engine's document-level listener table.  Handlers are registered through Groups so every
// concern (keyboard, fullscreen change, click-outside) is attached and detached as one unit.
package listener

import (
	"github.com/coursedeck/playdeck/internal/log"
)

// Event is anything that can be dispatched.  Type selects the handlers.
type Event interface {
	Type() string
}

// Handler receives a dispatched event
type Handler func(Event)

type entry struct {
	id      int
	typ     string
	handler Handler
}

// Registry holds live registrations.  It is not safe for concurrent use: it belongs to the UI event loop.
type Registry struct {
	nextID  int
	entries []entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Dispatch calls every handler registered for event.Type() in registration order and returns how many ran.  Handlers
// may attach or detach groups; the set of handlers called is fixed when Dispatch starts.
func (r *Registry) Dispatch(event Event) int {
	var matched []Handler
	for _, e := range r.entries {
		if e.typ == event.Type() {
			matched = append(matched, e.handler)
		}
	}
	for _, h := range matched {
		h(event)
	}
	return len(matched)
}

// Len is the number of live registrations
func (r *Registry) Len() int {
	return len(r.entries)
}

// Count is the number of live registrations for one event type
func (r *Registry) Count(typ string) int {
	n := 0
	for _, e := range r.entries {
		if e.typ == typ {
			n++
		}
	}
	return n
}

func (r *Registry) add(typ string, h Handler) int {
	r.nextID++
	r.entries = append(r.entries, entry{id: r.nextID, typ: typ, handler: h})
	return r.nextID
}

func (r *Registry) remove(id int) {
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

type binding struct {
	typ     string
	handler Handler
}

// Group is a named set of registrations attached and detached together
type Group struct {
	name     string
	registry *Registry
	bindings []binding
	ids      []int
}

// Group creates a detached group on r
func (r *Registry) Group(name string) *Group {
	return &Group{name: name, registry: r}
}

// On adds a binding.  Bindings added while attached take effect on the next Attach.
func (g *Group) On(typ string, h Handler) *Group {
	g.bindings = append(g.bindings, binding{typ: typ, handler: h})
	return g
}

// Attach registers every binding.  Attaching an attached group does nothing.
func (g *Group) Attach() {
	if g.Attached() {
		return
	}
	for _, b := range g.bindings {
		g.ids = append(g.ids, g.registry.add(b.typ, b.handler))
	}
	log.Debug("Listener group attached", "group", g.name, "listeners", len(g.ids))
}

// Detach removes every registration made by Attach.  Detaching a detached group does nothing.
func (g *Group) Detach() {
	if !g.Attached() {
		return
	}
	for _, id := range g.ids {
		g.registry.remove(id)
	}
	log.Debug("Listener group detached", "group", g.name, "listeners", len(g.ids))
	g.ids = nil
}

func (g *Group) Attached() bool {
	return len(g.ids) > 0
}

func (g *Group) Name() string {
	return g.name
}

// Scope tracks groups attached during one mount so they can all be released on any exit path
type Scope struct {
	groups []*Group
}

// Attach attaches g and records it for Release
func (s *Scope) Attach(g *Group) {
	g.Attach()
	s.groups = append(s.groups, g)
}

// Release detaches every recorded group, newest first
func (s *Scope) Release() {
	for i := len(s.groups) - 1; i >= 0; i-- {
		s.groups[i].Detach()
	}
	s.groups = nil
}
