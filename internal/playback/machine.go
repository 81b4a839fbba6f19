package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/coursedeck/playdeck/internal/log"
	"github.com/coursedeck/playdeck/internal/player"
	"github.com/samber/lo"
)

var (
	// ErrNoBackend is returned by commands issued before a backend was bound
	ErrNoBackend = errors.New("no playback backend")
	// ErrLoadTimeout is the Context error after loading took longer than the configured limit
	ErrLoadTimeout = errors.New("timed out waiting for media to load")
)

// Backend is the part of a player.Handle the machine commands
type Backend interface {
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(fraction float64) error
	SetRate(rate float64) error
	Position() float64
}

// Machine is the only writer of a Context and the only caller of media commands on the backend.  Commands are requests:
// status and time change when the backend reports back through Apply.
type Machine struct {
	backend     Backend
	ctx         *Context
	loadTimeout time.Duration
}

// NewMachine creates a machine in the Loading state.  A zero loadTimeout waits forever.
func NewMachine(loadTimeout time.Duration, now time.Time) *Machine {
	return &Machine{
		ctx:         newContext(now),
		loadTimeout: loadTimeout,
	}
}

// Bind attaches the launched backend.  Commands before Bind fail with ErrNoBackend.
func (m *Machine) Bind(backend Backend) {
	m.backend = backend
}

// Context returns the state record for reading
func (m *Machine) Context() *Context {
	return m.ctx
}

// TogglePlay requests play unless the backend reported Playing, in which case it requests pause
func (m *Machine) TogglePlay() error {
	if m.backend == nil {
		return ErrNoBackend
	}
	if m.ctx.status == StatusPlaying {
		return m.backend.Pause()
	}
	return m.backend.Play()
}

// SeekTo requests an absolute position.  The value is not clamped here, the backend clamps.
func (m *Machine) SeekTo(seconds float64) error {
	if m.backend == nil {
		return ErrNoBackend
	}
	return m.backend.Seek(seconds)
}

// Skip requests the backend's live position plus delta.  Out of range results are passed through unclamped.
func (m *Machine) Skip(delta float64) error {
	if m.backend == nil {
		return ErrNoBackend
	}
	return m.SeekTo(m.backend.Position() + delta)
}

// ScrubTo seeks to the time under pointer offset x on a track of width w, and shows it before the backend confirms.
// It does nothing until the duration is known.  While ended the context stays at 0 until the backend reports the seek.
func (m *Machine) ScrubTo(x, w float64) error {
	if !m.ctx.hasDuration || m.ctx.duration <= 0 || w <= 0 {
		log.Debug("Ignoring scrub without a known duration", "x", x, "width", w)
		return nil
	}
	target := SeekTarget(x, w, m.ctx.duration)
	if err := m.SeekTo(target); err != nil {
		return err
	}
	if m.ctx.status != StatusEnded {
		m.ctx.currentTime = target
	}
	return nil
}

// SetVolume applies fraction as given; callers keep it within [0,1].  Zero mutes.  A positive value is remembered for
// unmuting but does not unmute on its own.
func (m *Machine) SetVolume(fraction float64) error {
	if m.backend == nil {
		return ErrNoBackend
	}
	if err := m.backend.SetVolume(fraction); err != nil {
		return err
	}

	m.ctx.volume = fraction
	if fraction == 0 {
		m.ctx.muted = true
	} else {
		m.ctx.lastVolume = fraction
	}
	return nil
}

// ToggleMute silences the backend while keeping the volume to come back to, or restores it
func (m *Machine) ToggleMute() error {
	if m.backend == nil {
		return ErrNoBackend
	}

	if m.ctx.muted {
		restore := m.ctx.lastVolume
		if restore <= 0 {
			restore = DefaultVolume
		}
		if err := m.backend.SetVolume(restore); err != nil {
			return err
		}
		m.ctx.volume = restore
		m.ctx.muted = false
		return nil
	}

	if m.ctx.volume > 0 {
		m.ctx.lastVolume = m.ctx.volume
	}
	if err := m.backend.SetVolume(0); err != nil {
		return err
	}
	m.ctx.volume = 0
	m.ctx.muted = true
	return nil
}

// SetRate applies one of Rates
func (m *Machine) SetRate(rate float64) error {
	if !ValidRate(rate) {
		return fmt.Errorf("%w: %v", ErrUnsupportedRate, rate)
	}
	if m.backend == nil {
		return ErrNoBackend
	}
	if err := m.backend.SetRate(rate); err != nil {
		return err
	}
	m.ctx.rate = rate
	return nil
}

// StepRate moves one entry up (dir > 0) or down (dir < 0) the rate table
func (m *Machine) StepRate(dir int) error {
	step := 0
	switch {
	case dir > 0:
		step = 1
	case dir < 0:
		step = -1
	}
	return m.SetRate(NextRate(m.ctx.rate, step))
}

// Apply folds one backend event into the context
func (m *Machine) Apply(event player.Event) {
	if m.ctx.status == StatusError {
		return
	}

	switch event.Type {
	case player.EventTimeUpdate:
		// Ended parks the scrubber at 0 regardless of where the backend stopped
		if m.ctx.status != StatusEnded {
			m.ctx.currentTime = event.Value
		}
	case player.EventMetadata:
		m.ctx.duration = event.Value
		m.ctx.hasDuration = true
		m.finishLoading()
	case player.EventCanPlay:
		m.finishLoading()
	case player.EventPlay:
		if m.ctx.status == StatusLoading {
			m.ctx.playRequested = true
			return
		}
		m.ctx.status = StatusPlaying
	case player.EventPause:
		switch m.ctx.status {
		case StatusLoading:
			m.ctx.playRequested = false
		case StatusEnded:
			// The backend pauses itself on the last frame
		default:
			m.ctx.status = StatusPaused
		}
	case player.EventSeeked:
		if m.ctx.status == StatusEnded {
			m.ctx.status = StatusPaused
			m.ctx.currentTime = event.Value
		}
	case player.EventVolume:
		m.applyVolume(event.Value)
	case player.EventRate:
		if event.Value > 0 {
			m.ctx.rate = event.Value
		}
	case player.EventEnded:
		m.ctx.status = StatusEnded
		m.ctx.currentTime = 0
		m.ctx.playRequested = false
	case player.EventError:
		m.Fail(event.Err)
	}
}

// applyVolume takes the backend's own volume.  Zero mutes, positive values become the unmute target, and like
// SetVolume a positive value does not unmute.
func (m *Machine) applyVolume(fraction float64) {
	fraction = lo.Clamp(fraction, 0, 1)
	m.ctx.volume = fraction
	if fraction == 0 {
		m.ctx.muted = true
	} else {
		m.ctx.lastVolume = fraction
	}
}

// Fail moves to StatusError.  Used for backend errors, launch failures and load timeouts.
func (m *Machine) Fail(err error) {
	if m.ctx.status == StatusError {
		return
	}
	if err == nil {
		err = errors.New("playback failed")
	}
	log.Warn("Playback failed", "from", m.ctx.status.String(), "error", err)
	m.ctx.status = StatusError
	m.ctx.err = err
}

// CheckLoadTimeout fails the machine when it has been loading for longer than the configured timeout.  It reports
// whether it did.
func (m *Machine) CheckLoadTimeout(now time.Time) bool {
	if m.ctx.status != StatusLoading || m.loadTimeout <= 0 {
		return false
	}
	if now.Sub(m.ctx.loadingSince) < m.loadTimeout {
		return false
	}
	m.Fail(fmt.Errorf("%w after %s", ErrLoadTimeout, m.loadTimeout))
	return true
}

func (m *Machine) finishLoading() {
	if m.ctx.status != StatusLoading {
		return
	}
	if m.ctx.playRequested {
		m.ctx.status = StatusPlaying
	} else {
		m.ctx.status = StatusPaused
	}
	m.ctx.playRequested = false
	log.Debug("Media loaded", "status", m.ctx.status.String(), "duration", m.ctx.duration)
}
