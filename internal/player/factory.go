package player

import (
	"fmt"

	"github.com/coursedeck/playdeck/internal/config"
	"github.com/coursedeck/playdeck/internal/log"
)

// PlayerType defines the type of native player to drive
type PlayerType string

const (
	// PlayerTypeMPV represents the MPV player
	PlayerTypeMPV PlayerType = "mpv"
)

// CreateLauncher creates the native player launcher selected by the configuration
func CreateLauncher(cfg *config.Config) (Launcher, error) {
	playerType := PlayerType(cfg.Player.Type)
	log.Info("Creating player launcher", "type", playerType)

	switch playerType {
	case PlayerTypeMPV, "":
		return NewMPVPlayer(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported player type: %s", playerType)
	}
}
