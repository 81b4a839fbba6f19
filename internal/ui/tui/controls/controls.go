// Package controls decides when the control overlay is drawn over the player surface.
package controls

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coursedeck/playdeck/internal/log"
)

const (
	// IdleHideDelay is how long the pointer may rest before the overlay hides during playback
	IdleHideDelay = 3 * time.Second
	// LeaveHideDelay is how long after the pointer leaves the surface the overlay hides during playback
	LeaveHideDelay = 1 * time.Second
)

// HideMsg is delivered when a hide timer fires.  Stale messages are ignored by Update.
type HideMsg struct {
	id    int
	epoch int
	leave bool
}

// Controller owns overlay visibility and the idle timer.  Timers are tea.Tick commands; a timer is invalidated by
// changing the id or epoch it was armed with, never by stopping it.
type Controller struct {
	visible    bool
	idleDelay  time.Duration
	leaveDelay time.Duration

	nextID int
	idleID int // id of the one live idle timer, 0 when none
	epoch  int
}

// New creates a visible controller.  Non-positive delays fall back to the defaults.
func New(idleDelay, leaveDelay time.Duration) *Controller {
	if idleDelay <= 0 {
		idleDelay = IdleHideDelay
	}
	if leaveDelay <= 0 {
		leaveDelay = LeaveHideDelay
	}
	return &Controller{
		visible:    true,
		idleDelay:  idleDelay,
		leaveDelay: leaveDelay,
	}
}

func (c *Controller) Visible() bool {
	return c.visible
}

// PointerMove shows the overlay and rearms the idle timer.  The previous timer is invalidated before the new one is
// armed, so at most one idle HideMsg can ever act.
func (c *Controller) PointerMove() tea.Cmd {
	c.visible = true

	c.idleID = 0
	c.nextID++
	id, epoch := c.nextID, c.epoch
	c.idleID = id

	return tea.Tick(c.idleDelay, func(time.Time) tea.Msg {
		return HideMsg{id: id, epoch: epoch}
	})
}

// PointerLeave schedules a one-shot hide.  Later pointer moves do not cancel it.
func (c *Controller) PointerLeave() tea.Cmd {
	epoch := c.epoch
	return tea.Tick(c.leaveDelay, func(time.Time) tea.Msg {
		return HideMsg{epoch: epoch, leave: true}
	})
}

// Update applies a fired timer.  The overlay only hides while playing.  It reports whether visibility changed.
func (c *Controller) Update(msg HideMsg, playing bool) bool {
	if msg.epoch != c.epoch {
		log.Trace("Ignoring hide timer from a previous mount")
		return false
	}

	if !msg.leave {
		if msg.id != c.idleID {
			log.Trace("Ignoring stale idle timer", "id", msg.id, "live", c.idleID)
			return false
		}
		c.idleID = 0
	}

	if !playing || !c.visible {
		return false
	}
	c.visible = false
	return true
}

// Pending reports whether an idle timer is live
func (c *Controller) Pending() bool {
	return c.idleID != 0
}

// Unmount invalidates every timer armed so far
func (c *Controller) Unmount() {
	c.epoch++
	c.idleID = 0
}
