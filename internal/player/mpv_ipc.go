package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/coursedeck/playdeck/internal/log"
	"github.com/google/uuid"
)

// MPVIPCClient provides communication with a running MPV instance
type MPVIPCClient struct {
	socketPath string

	mu     sync.Mutex // guards conn writes
	conn   net.Conn
	events chan MPVEvent

	done      chan struct{} // closed by Close, unblocks the reader
	closeOnce sync.Once
}

// MPVEvent is one line received from MPV.  Property changes, lifecycle events and command replies share this shape.
type MPVEvent struct {
	Event     string          `json:"event,omitempty"`
	ID        int             `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	FileError string          `json:"file_error,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewMPVIPCClient creates a new MPV IPC client
func NewMPVIPCClient(socketPath string) *MPVIPCClient {
	return &MPVIPCClient{
		socketPath: socketPath,
		events:     make(chan MPVEvent, 100),
		done:       make(chan struct{}),
	}
}

// NewMPVSocketPath returns a socket path unique to one mount, so two engines never share an mpv instance.
// MPV_IPC_SOCKET overrides it for debugging against an mpv started by hand.
func NewMPVSocketPath() string {
	if path := os.Getenv("MPV_IPC_SOCKET"); path != "" {
		return path
	}

	name := "playdeck-" + uuid.NewString()
	if runtime.GOOS == "windows" {
		return `\\.\pipe\` + name
	}

	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, name+".sock")
	}
	return filepath.Join(os.TempDir(), name+".sock")
}

// SocketPath returns the path this client dials
func (c *MPVIPCClient) SocketPath() string {
	return c.socketPath
}

// WaitForConnection attempts to connect to MPV with retries
func (c *MPVIPCClient) WaitForConnection(ctx context.Context, maxAttempts int, retryDelay time.Duration) error {
	log.Debug("Waiting for MPV to create socket", "socket_path", c.socketPath, "max_attempts", maxAttempts)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if runtime.GOOS != "windows" {
			if _, err := os.Stat(c.socketPath); os.IsNotExist(err) {
				log.Debug("MPV socket does not exist yet", "attempt", attempt, "path", c.socketPath)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(retryDelay):
					continue
				}
			}
		}

		err := c.Connect(ctx)
		if err == nil {
			log.Info("Connected to MPV", "attempt", attempt)
			return nil
		}

		log.Debug("Failed to connect to MPV", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("failed to connect to MPV after %d attempts", maxAttempts)
}

// attach stores the connection and starts the reader.  Called by the platform specific Connect.
func (c *MPVIPCClient) attach(conn net.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	go c.readEvents(conn)
}

// Close closes the connection to MPV.  The events channel is closed once the reader notices.
func (c *MPVIPCClient) Close() error {
	c.closeOnce.Do(func() { close(c.done) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// readEvents continuously reads newline delimited JSON from MPV until the connection drops
func (c *MPVIPCClient) readEvents(conn net.Conn) {
	defer close(c.events)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		log.Trace("Raw MPV event", "data", string(line))

		var event MPVEvent
		if err := json.Unmarshal(line, &event); err != nil {
			log.Warn("Failed to unmarshal MPV event", "error", err)
			continue
		}

		select {
		case c.events <- event:
		case <-c.done:
			log.Debug("MPV event reader stopped, client closed")
			return
		}
	}

	if err := scanner.Err(); err != nil {
		log.Debug("MPV event reader stopped with error", "error", err)
		return
	}
	log.Debug("MPV event reader stopped")
}

// Events returns the channel for MPV events
func (c *MPVIPCClient) Events() <-chan MPVEvent {
	return c.events
}

// SendCommand writes a single command to MPV.  Replies arrive on Events() tagged with a request_id.
func (c *MPVIPCClient) SendCommand(cmd []interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected to MPV")
	}

	data, err := json.Marshal(map[string]interface{}{
		"command": cmd,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	if _, err = c.conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// ObserveProperty starts observing an MPV property.  Changes arrive as property-change events tagged with id.
func (c *MPVIPCClient) ObserveProperty(id int, name string) error {
	return c.SendCommand([]interface{}{"observe_property", id, name})
}
