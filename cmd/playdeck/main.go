package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/coursedeck/playdeck/internal/config"
	"github.com/coursedeck/playdeck/internal/log"
	"github.com/coursedeck/playdeck/internal/source"
	"github.com/coursedeck/playdeck/internal/ui/tui"
	"github.com/coursedeck/playdeck/internal/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.Flags().StringP("title", "t", "", "Title shown above the player")
	rootCmd.Flags().BoolP("embedded", "e", false, "Play through the embeddable third-party player instead of mpv")
	rootCmd.Flags().StringP("config", "c", "", "Path to the config file (overrides PLAYDECK_CONFIG_PATH)")
	rootCmd.Version = version.String()
}

var rootCmd = &cobra.Command{
	Use:   "playdeck [flags] <video-url>",
	Short: "Terminal video player for course lessons",
	Long: "Plays a lesson video in mpv with keyboard and mouse controls, or hands embeddable videos to their own player.\n\n" +
		"Environment variables:\n" + envHelp(),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if path := lo.Must(cmd.Flags().GetString("config")); path != "" {
			if err := os.Setenv("PLAYDECK_CONFIG_PATH", path); err != nil {
				return fmt.Errorf("failed to set config path: %w", err)
			}
		}

		props := source.Props{
			VideoURL:     args[0],
			Title:        lo.Must(cmd.Flags().GetString("title")),
			EmbeddedHint: lo.Must(cmd.Flags().GetBool("embedded")),
		}
		return run(props)
	},
}

func run(props source.Props) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	defer logger.Close()

	log.SetDefaultLogger(logger)

	log.Info("Starting up playdeck", "version", version.Version, "commit", version.Commit, "build_time", version.BuildTime)

	if err := tui.Run(cfg, props); err != nil {
		log.Error("Unhandled error while running TUI", "error", err)
		return err
	}

	log.Info("playdeck shutting down.  Goodbye!")
	return nil
}

func envHelp() string {
	var b strings.Builder
	for _, pair := range config.EnvHelp() {
		fmt.Fprintf(&b, "  %-40s %s\n", pair[0], pair[1])
	}
	return b.String()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "playdeck: %v\n", err)
		os.Exit(1)
	}
}
