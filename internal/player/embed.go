package player

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/coursedeck/playdeck/internal/log"
)

// EmbedOpener hands an embeddable URL to whatever renders it.  The engine keeps no handle on the result: the embedded
// player owns its own controls.
type EmbedOpener struct {
	// App is the application to open the URL with.  Empty uses the system default URL handler.
	App string

	start func(cmd *exec.Cmd) error
}

// NewEmbedOpener creates an opener for the given application, or the system handler when app is empty
func NewEmbedOpener(app string) *EmbedOpener {
	return &EmbedOpener{
		App:   app,
		start: func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Open starts the handler for url without waiting for it to exit
func (o *EmbedOpener) Open(url string) error {
	cmd, err := o.Command(url)
	if err != nil {
		return err
	}

	log.Info("Opening embedded player", "url", url, "app", o.App)
	if err := o.start(cmd); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}

	// Reap the handler in the background, nothing reads its exit status
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug("URL handler exited with error", "error", err)
		}
	}()
	return nil
}

// Command builds the process that would open url on this OS
func (o *EmbedOpener) Command(url string) (*exec.Cmd, error) {
	if o.App != "" {
		return commandWith(runtime.GOOS, url, o.App)
	}
	return command(runtime.GOOS, url)
}

func command(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "windows":
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", url), nil
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", url), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}

func commandWith(goos, url, app string) (*exec.Cmd, error) {
	switch goos {
	case "windows":
		// cmd's start treats & as a command separator
		escaped := strings.ReplaceAll(url, "&", "^&")
		return exec.Command("cmd", "/C", "start", "", app, escaped), nil
	case "darwin":
		return exec.Command("open", "-a", app, url), nil
	default:
		return exec.Command(app, url), nil
	}
}
