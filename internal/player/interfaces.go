package player

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned by commands issued after the handle was closed, and carried by the EventError that reports
	// the player going away on its own.
	ErrClosed = errors.New("player closed")
	// ErrQueueFull means the command writer is not keeping up.  The command is dropped, never blocked on.
	ErrQueueFull = errors.New("player command queue full")
)

// EventType names a backend lifecycle event
type EventType string

const (
	// EventTimeUpdate reports the current playback position in Value
	EventTimeUpdate EventType = "timeupdate"
	// EventMetadata reports the media duration in Value
	EventMetadata EventType = "loadedmetadata"
	// EventCanPlay reports that the first frame is available
	EventCanPlay EventType = "canplay"
	// EventPlay reports that playback is running
	EventPlay EventType = "play"
	// EventPause reports that playback is paused
	EventPause EventType = "pause"
	// EventEnded reports end of media
	EventEnded EventType = "ended"
	// EventVolume reports the player's volume as a fraction in Value
	EventVolume EventType = "volumechange"
	// EventRate reports the playback speed in Value
	EventRate EventType = "ratechange"
	// EventSeeked reports that the player left end of media after a seek.  Value is the position it landed on.
	EventSeeked EventType = "seeked"
	// EventFullscreen reports the player window fullscreen state in Active.  Name carries the backend's own event name.
	EventFullscreen EventType = "fullscreen"
	// EventError reports a failure that stops playback
	EventError EventType = "error"
)

// Event is a single notification from a Handle
type Event struct {
	Type   EventType
	Name   string
	Value  float64
	Active bool
	Err    error
}

// Handle is a running, natively controllable player.  Every command is a request: it is queued and the player's own
// events report what actually happened.  Commands never block on I/O.
type Handle interface {
	Play() error
	Pause() error
	// Seek requests an absolute position in seconds.  Out of range values are left to the player to clamp.
	Seek(seconds float64) error
	// SetVolume takes a fraction where 1 is the player's nominal full volume
	SetVolume(fraction float64) error
	SetRate(rate float64) error
	// Position is the most recent position reported by the player, in seconds
	Position() float64
	// Events is closed after Close, or after the player went away and an EventError was delivered
	Events() <-chan Event
	// Close stops the player.  It is safe to call more than once.
	Close() error
}

// Launcher starts a native player for a URL
type Launcher interface {
	Launch(ctx context.Context, url, title string) (Handle, error)
}
