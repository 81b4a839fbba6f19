package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Player   PlayerConfig   `yaml:"player,omitempty"`
	Embed    EmbedConfig    `yaml:"embed,omitempty"`
	Controls ControlsConfig `yaml:"controls,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// PlayerConfig contains settings for the natively controlled backend
type PlayerConfig struct {
	Type        string        `yaml:"type,omitempty" validate:"oneof=mpv"`
	Path        string        `yaml:"path,omitempty" validate:"required"`
	Args        string        `yaml:"args,omitempty"`
	StartPaused bool          `yaml:"start_paused,omitempty"`
	LoadTimeout time.Duration `yaml:"load_timeout,omitempty" validate:"gte=0"` // 0 disables the timeout
}

// EmbedConfig controls what happens with embeddable URLs.  The engine never talks to the embedded player, it can only
// hand the URL to something that renders it.
type EmbedConfig struct {
	Passive bool   `yaml:"passive,omitempty"` // Only show the frame, never open the URL
	Opener  string `yaml:"opener,omitempty"`  // Empty uses the OS default URL handler
}

// ControlsConfig contains control overlay timings
type ControlsConfig struct {
	IdleHideDelay  time.Duration `yaml:"idle_hide_delay,omitempty" validate:"gt=0"`
	LeaveHideDelay time.Duration `yaml:"leave_hide_delay,omitempty" validate:"gt=0"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty" validate:"oneof=trace debug info warn error"`
	FilePath string `yaml:"file_path,omitempty"`
}

var validate = validator.New()

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties.  Dynamic properties are those that are determined at runtime, for example log file location which is different per OS.
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply environment variable overrides
// 6. Validate the result
func Load() (*Config, error) {
	cfg := createBaseDefaultConfig()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// If there is an error saving the default config, then still let the application startup using the defaults.
		_ = save(cfg, configPath)
	}

	applyDynamicDefaults(cfg)

	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	applyEnvVarOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct tags of a fully merged config
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyDynamicDefaults sets runtime-determined default values.  These are never written to the config file.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func save(cfg *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// ConfigPath returns the path the config is read from.  Exposed for the CLI so it can tell users where to look.
func ConfigPath() (string, error) {
	return getConfigPath()
}

// getConfigPath returns the path to the config file.  Uses the environment variable override if present, else tries
// to use OS config location defaults.
func getConfigPath() (string, error) {
	configPath := os.Getenv("PLAYDECK_CONFIG_PATH")
	if configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "playdeck", "config.yaml"), nil
}

// createBaseDefaultConfig creates a config with all default values
func createBaseDefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Type:        "mpv",
			Path:        "mpv",
			LoadTimeout: 30 * time.Second,
		},
		Embed: EmbedConfig{},
		Controls: ControlsConfig{
			IdleHideDelay:  3 * time.Second,
			LeaveHideDelay: time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultLogFilePath returns the path to the log file.  Tries to use expected OS location defaults.
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "playdeck.log")
	}

	switch runtime.GOOS {
	case "windows":
		// Windows:  %LOCALAPPDATA%\playdeck\logs
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, "playdeck", "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", "playdeck", "logs")
		}
	case "darwin":
		// macOS:  ~/Library/Logs/playdeck
		basePath = filepath.Join(homedir, "Library", "Logs", "playdeck")
	default:
		// Linux/BSD:  XDG_STATE_HOME
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, "playdeck", "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", "playdeck", "logs")
		}
	}

	if err := os.MkdirAll(basePath, 0700); err != nil {
		return filepath.Join(".", "playdeck.log")
	}
	return filepath.Join(basePath, "playdeck.log")
}
