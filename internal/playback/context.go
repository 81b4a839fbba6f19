// Package playback owns the playback state of a natively controlled player.  Every field of Context is written by
// Machine alone, through the named transitions in machine.go.
package playback

import (
	"math"
	"time"

	"github.com/samber/lo"
)

// Status is the observed state of the native backend
type Status int

const (
	StatusLoading Status = iota
	StatusPlaying
	StatusPaused
	StatusEnded
	// StatusError means the backend failed or never finished loading.  It is terminal for the mount.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	// DefaultVolume is what unmuting restores when no non-zero volume was ever set
	DefaultVolume = 0.5
	// InitialVolume is assumed until the backend reports its own volume
	InitialVolume = 1.0
)

// Context is the single mutable playback record.  Readers use the accessors, only Machine writes.
type Context struct {
	status      Status
	currentTime float64
	duration    float64
	hasDuration bool
	volume      float64
	lastVolume  float64
	muted       bool
	rate        float64
	err         error

	// playRequested remembers a play event seen while loading
	playRequested bool
	loadingSince  time.Time
}

func newContext(now time.Time) *Context {
	return &Context{
		status:       StatusLoading,
		volume:       InitialVolume,
		rate:         DefaultRate,
		loadingSince: now,
	}
}

func (c *Context) Status() Status       { return c.status }
func (c *Context) CurrentTime() float64 { return c.currentTime }
func (c *Context) Volume() float64      { return c.volume }
func (c *Context) Muted() bool          { return c.muted }
func (c *Context) Rate() float64        { return c.rate }
func (c *Context) Err() error           { return c.err }

// Duration is 0 until HasDuration reports true
func (c *Context) Duration() float64 { return c.duration }
func (c *Context) HasDuration() bool { return c.hasDuration }

// Loading reports whether the loading indicator is the only thing to show
func (c *Context) Loading() bool { return c.status == StatusLoading }

// ProgressFraction is currentTime/duration clamped to [0,1], or 0 while the duration is unknown
func (c *Context) ProgressFraction() float64 {
	if !c.hasDuration || c.duration <= 0 || c.status == StatusEnded {
		return 0
	}
	fraction := c.currentTime / c.duration
	if math.IsNaN(fraction) {
		return 0
	}
	return lo.Clamp(fraction, 0, 1)
}
