//go:build windows

package player

import (
	"context"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/coursedeck/playdeck/internal/log"
	"gopkg.in/natefinch/npipe.v2"
)

// setupPlayerProcess detaches MPV from the console playdeck runs in
func setupPlayerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// Connect establishes a connection with MPV for Windows
func (c *MPVIPCClient) Connect(ctx context.Context) error {
	log.Debug("Connecting to Windows named pipe", "path", c.socketPath)

	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	conn, err := npipe.DialTimeout(c.socketPath, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to MPV pipe: %w", err)
	}

	c.attach(conn)
	return nil
}
