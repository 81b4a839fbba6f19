package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coursedeck/playdeck/internal/config"
	"github.com/coursedeck/playdeck/internal/player"
	"github.com/coursedeck/playdeck/internal/source"
	"github.com/coursedeck/playdeck/internal/ui/tui/models"
)

// Run mounts one player for props and blocks until the user quits
func Run(cfg *config.Config, props source.Props) error {
	launcher, err := player.CreateLauncher(cfg)
	if err != nil {
		return fmt.Errorf("unable to create player: %w", err)
	}

	model := models.NewPlayerModel(cfg, props, launcher, player.NewEmbedOpener(cfg.Embed.Opener))
	defer model.Unmount()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithReportFocus())
	_, err = p.Run()
	return err
}
