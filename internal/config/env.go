package config

import (
	"os"
	"strconv"
	"time"

	"github.com/coursedeck/playdeck/internal/log"
)

type envVar struct {
	name  string
	desc  string
	apply func(*Config, string)
}

var supportedEnvVars = []envVar{
	{
		// Only here for documentation purposes.  It is handled prior to loading the config.
		name:  "PLAYDECK_CONFIG_PATH",
		desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) {},
	},
	{
		name:  "PLAYDECK_CONFIG_PLAYER_PATH",
		desc:  "Sets the path to the mpv binary.  Default: mpv",
		apply: func(c *Config, s string) { c.Player.Path = s },
	},
	{
		name:  "PLAYDECK_CONFIG_PLAYER_ARGS",
		desc:  "Extra arguments passed to mpv.  Default: None",
		apply: func(c *Config, s string) { c.Player.Args = s },
	},
	{
		name:  "PLAYDECK_CONFIG_PLAYER_START_PAUSED",
		desc:  "Start native playback paused.  Default: false",
		apply: func(c *Config, s string) { applyBool(&c.Player.StartPaused, "PLAYDECK_CONFIG_PLAYER_START_PAUSED", s) },
	},
	{
		name: "PLAYDECK_CONFIG_PLAYER_LOAD_TIMEOUT",
		desc: "How long to wait for media metadata before showing an error, e.g. 30s.  0 waits forever.  Default: 30s",
		apply: func(c *Config, s string) {
			applyDuration(&c.Player.LoadTimeout, "PLAYDECK_CONFIG_PLAYER_LOAD_TIMEOUT", s)
		},
	},
	{
		name:  "PLAYDECK_CONFIG_EMBED_PASSIVE",
		desc:  "Never open embeddable URLs, only display them.  Default: false",
		apply: func(c *Config, s string) { applyBool(&c.Embed.Passive, "PLAYDECK_CONFIG_EMBED_PASSIVE", s) },
	},
	{
		name:  "PLAYDECK_CONFIG_EMBED_OPENER",
		desc:  "Program used to open embeddable URLs.  Default: OS URL handler",
		apply: func(c *Config, s string) { c.Embed.Opener = s },
	},
	{
		name: "PLAYDECK_CONFIG_CONTROLS_IDLE_HIDE_DELAY",
		desc: "Pointer idle time before the controls hide while playing.  Default: 3s",
		apply: func(c *Config, s string) {
			applyDuration(&c.Controls.IdleHideDelay, "PLAYDECK_CONFIG_CONTROLS_IDLE_HIDE_DELAY", s)
		},
	},
	{
		name: "PLAYDECK_CONFIG_CONTROLS_LEAVE_HIDE_DELAY",
		desc: "Delay before the controls hide after the pointer leaves the player.  Default: 1s",
		apply: func(c *Config, s string) {
			applyDuration(&c.Controls.LeaveHideDelay, "PLAYDECK_CONFIG_CONTROLS_LEAVE_HIDE_DELAY", s)
		},
	},
	{
		name:  "PLAYDECK_CONFIG_LOGGING_LEVEL",
		desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) { c.Logging.Level = s },
	},
	{
		name:  "PLAYDECK_CONFIG_LOGGING_FILE_PATH",
		desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) { c.Logging.FilePath = s },
	},
}

func applyEnvVarOverrides(c *Config) {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.name); value != "" {
			envVar.apply(c, value)
		}
	}
}

// EnvHelp returns name/description pairs for every supported environment variable
func EnvHelp() [][2]string {
	help := make([][2]string, 0, len(supportedEnvVars))
	for _, envVar := range supportedEnvVars {
		help = append(help, [2]string{envVar.name, envVar.desc})
	}
	return help
}

func applyBool(dst *bool, name, value string) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn("Ignoring invalid boolean environment variable", "name", name, "value", value)
		return
	}
	*dst = b
}

func applyDuration(dst *time.Duration, name, value string) {
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn("Ignoring invalid duration environment variable", "name", name, "value", value)
		return
	}
	*dst = d
}
