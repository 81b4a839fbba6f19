package models

import (
	"context"
	"sync"
	"time"

	"github.com/coursedeck/playdeck/internal/log"
	"github.com/coursedeck/playdeck/internal/player"
)

// launchWaitTimeout bounds how long Unmount waits for an in-flight launch to notice its cancelled context
const launchWaitTimeout = 3 * time.Second

// pendingLaunch tracks one backend launch running off the event loop.  Once abandoned, a player that finishes starting
// is closed where it lands instead of being handed to an Update that will never run.
type pendingLaunch struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	started   bool
	abandoned bool
	handle    player.Handle // launched but possibly not yet seen by Update
}

func newPendingLaunch(cancel context.CancelFunc) *pendingLaunch {
	return &pendingLaunch{cancel: cancel, done: make(chan struct{})}
}

// begin reports whether the launch should still run
func (p *pendingLaunch) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.abandoned {
		return false
	}
	p.started = true
	return true
}

// finish records the launched handle.  It returns false after closing the handle when the mount is already gone.
func (p *pendingLaunch) finish(handle player.Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.abandoned {
		log.Debug("Player became ready after unmount, closing it")
		closeHandle(handle)
		return false
	}
	p.handle = handle
	return true
}

// abandon cancels the launch and waits up to timeout for it to return.  Any handle it produced is closed.
func (p *pendingLaunch) abandon(timeout time.Duration) {
	p.mu.Lock()
	p.abandoned = true
	started := p.started
	p.mu.Unlock()
	p.cancel()

	if started {
		select {
		case <-p.done:
		case <-time.After(timeout):
			log.Warn("Player launch still running after unmount", "waited", timeout)
		}
	}

	p.mu.Lock()
	handle := p.handle
	p.handle = nil
	p.mu.Unlock()

	// Handles are safe to close twice, so one already bound by Update is fine here
	if handle != nil {
		closeHandle(handle)
	}
}

func closeHandle(handle player.Handle) {
	if err := handle.Close(); err != nil {
		log.Warn("Failed to close player", "error", err)
	}
}
