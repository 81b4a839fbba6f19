package player

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coursedeck/playdeck/internal/config"
	"github.com/coursedeck/playdeck/internal/log"
)

// Observed property ids.  MPV echoes them back on every property-change event.
const (
	propTimePos = iota + 1
	propDuration
	propPause
	propEOFReached
	propFullscreen
	propVolume
	propSpeed
)

var observedProperties = map[int]string{
	propTimePos:    "time-pos",
	propDuration:   "duration",
	propPause:      "pause",
	propEOFReached: "eof-reached",
	propFullscreen: "fullscreen",
	propVolume:     "volume",
	propSpeed:      "speed",
}

const commandQueueSize = 32

// MPVPlayer launches MPV processes and hands back a Handle to control them
type MPVPlayer struct {
	config *config.Config
}

// NewMPVPlayer creates a new MPV launcher
func NewMPVPlayer(cfg *config.Config) *MPVPlayer {
	return &MPVPlayer{config: cfg}
}

// Launch starts MPV for url and blocks until its IPC socket accepts a connection.  The returned Handle owns the process.
func (p *MPVPlayer) Launch(ctx context.Context, url, title string) (Handle, error) {
	socketPath := NewMPVSocketPath()
	log.Info("Starting MPV", "url", url, "socket_path", socketPath)

	mpvPath := p.config.Player.Path
	if mpvPath == "" {
		mpvPath = "mpv"
	}

	cmd := exec.Command(mpvPath, p.buildArgs(socketPath, url, title)...)
	setupPlayerProcess(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start MPV: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		err := cmd.Wait()
		log.Debug("MPV process exited", "error", err)
		close(exited)
	}()

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := NewMPVIPCClient(socketPath)
	if err := waitForClient(connCtx, client, exited); err != nil {
		_ = cmd.Process.Kill()
		removeSocket(socketPath)
		return nil, fmt.Errorf("failed to connect to MPV: %w", err)
	}

	h := newMPVHandle(client, cmd)
	if err := h.observe(); err != nil {
		_ = h.Close()
		return nil, err
	}
	return h, nil
}

// waitForClient stops retrying as soon as the process dies, usually because the binary rejected its arguments
func waitForClient(ctx context.Context, client *MPVIPCClient, exited <-chan struct{}) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-exited:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := client.WaitForConnection(ctx, 20, 250*time.Millisecond)
	select {
	case <-exited:
		if err != nil {
			return fmt.Errorf("MPV exited before accepting connections")
		}
	default:
	}
	return err
}

func (p *MPVPlayer) buildArgs(socketPath, url, title string) []string {
	args := []string{
		"--no-terminal",   // Disable terminal control
		"--keep-open=yes", // Stay paused on the last frame so replay is a seek
		"--input-ipc-server=" + socketPath,
	}
	if title != "" {
		args = append(args, "--force-media-title="+title)
	}
	if p.config.Player.StartPaused {
		args = append(args, "--pause")
	}

	if p.config.Player.Args != "" {
		args = append(args, ParseArgs(p.config.Player.Args)...)
	}

	// The stream URL is always last
	return append(args, url)
}

// mpvHandle is a Handle over one MPV IPC connection.  Commands go through a bounded queue drained by a writer goroutine,
// and a translator goroutine turns raw MPV events into Events.
type mpvHandle struct {
	client *MPVIPCClient
	cmd    *exec.Cmd

	commands chan []interface{}
	events   chan Event
	done     chan struct{}

	position atomic.Uint64 // math.Float64bits of the last time-pos
	eof      atomic.Bool

	closeOnce sync.Once
	closed    atomic.Bool
}

func newMPVHandle(client *MPVIPCClient, cmd *exec.Cmd) *mpvHandle {
	h := &mpvHandle{
		client:   client,
		cmd:      cmd,
		commands: make(chan []interface{}, commandQueueSize),
		events:   make(chan Event, 64),
		done:     make(chan struct{}),
	}
	go h.writeCommands()
	go h.translateEvents()
	return h
}

func (h *mpvHandle) observe() error {
	for id := propTimePos; id <= propSpeed; id++ {
		if err := h.client.ObserveProperty(id, observedProperties[id]); err != nil {
			return fmt.Errorf("failed to observe %s: %w", observedProperties[id], err)
		}
	}
	return nil
}

func (h *mpvHandle) writeCommands() {
	for {
		select {
		case <-h.done:
			return
		case cmd := <-h.commands:
			if err := h.client.SendCommand(cmd); err != nil {
				log.Warn("Failed to send MPV command", "command", cmd, "error", err)
			}
		}
	}
}

func (h *mpvHandle) enqueue(cmd ...interface{}) error {
	if h.closed.Load() {
		return ErrClosed
	}
	log.Trace("Queueing MPV command", "command", cmd)
	select {
	case h.commands <- cmd:
		return nil
	default:
		log.Warn("Dropping MPV command, queue full", "command", cmd)
		return ErrQueueFull
	}
}

func (h *mpvHandle) emit(event Event) bool {
	select {
	case h.events <- event:
		return true
	case <-h.done:
		return false
	}
}

func (h *mpvHandle) translateEvents() {
	defer close(h.events)

	for raw := range h.client.Events() {
		event, ok := h.translate(raw)
		if !ok {
			continue
		}
		if !h.emit(event) {
			return
		}
	}

	if !h.closed.Load() {
		log.Warn("Lost connection to MPV")
		h.emit(Event{Type: EventError, Err: ErrClosed})
	}
}

// translate maps one MPV message to an Event.  ok is false for messages the engine does not care about.
func (h *mpvHandle) translate(raw MPVEvent) (Event, bool) {
	if raw.Event == "" {
		if raw.Error != "" && raw.Error != "success" {
			log.Warn("MPV rejected command", "request_id", raw.RequestID, "error", raw.Error)
		}
		return Event{}, false
	}

	switch raw.Event {
	case "property-change":
		return h.translateProperty(raw)
	case "playback-restart":
		return Event{Type: EventCanPlay, Name: raw.Event}, true
	case "end-file":
		if raw.Reason == "error" {
			return Event{Type: EventError, Name: raw.Event, Err: fmt.Errorf("MPV could not play file: %s", raw.FileError)}, true
		}
	}

	log.Trace("Ignoring MPV event", "event", raw.Event)
	return Event{}, false
}

func (h *mpvHandle) translateProperty(raw MPVEvent) (Event, bool) {
	// Properties are null while no file is loaded
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return Event{}, false
	}

	switch raw.Name {
	case "time-pos":
		value, err := decodeFloat(raw.Data)
		if err != nil {
			return Event{}, false
		}
		h.position.Store(math.Float64bits(value))
		return Event{Type: EventTimeUpdate, Name: raw.Name, Value: value}, true
	case "duration":
		value, err := decodeFloat(raw.Data)
		if err != nil {
			return Event{}, false
		}
		return Event{Type: EventMetadata, Name: raw.Name, Value: value}, true
	case "pause":
		paused, err := decodeBool(raw.Data)
		if err != nil {
			return Event{}, false
		}
		if paused {
			return Event{Type: EventPause, Name: raw.Name}, true
		}
		return Event{Type: EventPlay, Name: raw.Name}, true
	case "eof-reached":
		reached, err := decodeBool(raw.Data)
		if err != nil {
			return Event{}, false
		}
		wasReached := h.eof.Swap(reached)
		if reached {
			return Event{Type: EventEnded, Name: raw.Name}, true
		}
		// With keep-open a seek away from the last frame clears eof-reached and leaves MPV paused there
		if wasReached {
			return Event{Type: EventSeeked, Name: raw.Name, Value: h.Position()}, true
		}
	case "volume":
		value, err := decodeFloat(raw.Data)
		if err != nil {
			return Event{}, false
		}
		return Event{Type: EventVolume, Name: raw.Name, Value: value / 100}, true
	case "speed":
		value, err := decodeFloat(raw.Data)
		if err != nil {
			return Event{}, false
		}
		return Event{Type: EventRate, Name: raw.Name, Value: value}, true
	case "fullscreen":
		active, err := decodeBool(raw.Data)
		if err != nil {
			return Event{}, false
		}
		return Event{Type: EventFullscreen, Name: raw.Name, Active: active}, true
	}
	return Event{}, false
}

func decodeFloat(data json.RawMessage) (float64, error) {
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		log.Warn("Failed to unmarshal event data", "data", string(data))
		return 0, fmt.Errorf("failed to unmarshal event data: %w", err)
	}
	return value, nil
}

func decodeBool(data json.RawMessage) (bool, error) {
	var value bool
	if err := json.Unmarshal(data, &value); err != nil {
		log.Warn("Failed to unmarshal event data", "data", string(data))
		return false, fmt.Errorf("failed to unmarshal event data: %w", err)
	}
	return value, nil
}

// Play resumes playback.  After end of file MPV stays paused on the last frame, so replay rewinds first.
func (h *mpvHandle) Play() error {
	if h.eof.Load() {
		if err := h.enqueue("seek", 0, "absolute"); err != nil {
			return err
		}
	}
	return h.enqueue("set_property", "pause", false)
}

func (h *mpvHandle) Pause() error {
	return h.enqueue("set_property", "pause", true)
}

func (h *mpvHandle) Seek(seconds float64) error {
	return h.enqueue("seek", seconds, "absolute")
}

func (h *mpvHandle) SetVolume(fraction float64) error {
	return h.enqueue("set_property", "volume", fraction*100)
}

func (h *mpvHandle) SetRate(rate float64) error {
	return h.enqueue("set_property", "speed", rate)
}

// SetFullscreen asks MPV to change its window state.  The fullscreen property-change event confirms it.
func (h *mpvHandle) SetFullscreen(active bool) error {
	return h.enqueue("set_property", "fullscreen", active)
}

func (h *mpvHandle) Position() float64 {
	return math.Float64frombits(h.position.Load())
}

func (h *mpvHandle) Events() <-chan Event {
	return h.events
}

// Close quits MPV and releases the socket.  Safe to call more than once.
func (h *mpvHandle) Close() error {
	var err error
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		close(h.done)

		if sendErr := h.client.SendCommand([]interface{}{"quit"}); sendErr != nil {
			log.Debug("Could not ask MPV to quit", "error", sendErr)
			if h.cmd != nil && h.cmd.Process != nil {
				log.Info("Stopping MPV process")
				if killErr := h.cmd.Process.Kill(); killErr != nil {
					err = fmt.Errorf("failed to stop MPV: %w", killErr)
				}
			}
		}

		if closeErr := h.client.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close MPV connection: %w", closeErr)
		}
		if h.cmd != nil {
			removeSocket(h.client.SocketPath())
		}
	})
	return err
}

// removeSocket deletes a leftover unix socket file.  Named pipes vanish with their server.
func removeSocket(path string) {
	if runtime.GOOS == "windows" {
		return
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			log.Warn("Failed to remove MPV socket file", "path", path, "error", err)
		}
	}
}
