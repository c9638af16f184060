package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Player   PlayerConfig   `yaml:"player,omitempty"`
	Playback PlaybackConfig `yaml:"playback,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// PlayerConfig contains settings for the external video engine
type PlayerConfig struct {
	Type         string `yaml:"type,omitempty"` // "mpv", "custom"
	Path         string `yaml:"path,omitempty"`
	Args         string `yaml:"args,omitempty"`
	SocketPath   string `yaml:"socket_path,omitempty"`
	IPCTimeoutMs int    `yaml:"ipc_timeout_ms,omitempty"`
}

// PlaybackConfig contains the control surface behaviour
type PlaybackConfig struct {
	AutoPIP            bool         `yaml:"auto_pip,omitempty"`
	SeekStepSeconds    float64      `yaml:"seek_step_seconds,omitempty"`
	ProgressIntervalMs int          `yaml:"progress_interval_ms,omitempty"`
	MaxBitrate         int          `yaml:"max_bitrate,omitempty"`
	PreferredQuality   string       `yaml:"preferred_quality,omitempty"`
	Buffer             BufferConfig `yaml:"buffer,omitempty"`
}

// BufferConfig mirrors the buffering hints handed to the engine when it is launched
type BufferConfig struct {
	MinBufferMs                      int `yaml:"min_buffer_ms,omitempty"`
	MaxBufferMs                      int `yaml:"max_buffer_ms,omitempty"`
	BufferForPlaybackMs              int `yaml:"buffer_for_playback_ms,omitempty"`
	BufferForPlaybackAfterRebufferMs int `yaml:"buffer_for_playback_after_rebuffer_ms,omitempty"`
	ForwardBufferSeconds             int `yaml:"forward_buffer_seconds,omitempty"`
}

// UIConfig contains UI display preferences
type UIConfig struct {
	ShowControls *bool `yaml:"show_controls,omitempty"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`
	FilePath   string `yaml:"file_path,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// ControlsVisible reports whether the controls overlay starts visible.  Defaults to true.
func (c UIConfig) ControlsVisible() bool {
	return c.ShowControls == nil || *c.ShowControls
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties.  Dynamic properties are those that are determined at runtime, for example log file location which is different per OS.
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply environment variable overrides
func Load() (*Config, error) {
	// 1. Start with base defaults
	cfg := createBaseDefaultConfig()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	// 2. If no config file exists on disk, then write a default one
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// If there is an error saving the default config, then still let the application startup using the defaults.
		_ = save(cfg, configPath)
	}

	// 3. Apply dynamic defaults if necessary
	applyDynamicDefaults(cfg)

	// 4. Load the config from disk and merge it into the base defaults
	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	// 5. Apply the environment variable overrides which take precedence
	if err := applyEnvVarOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDynamicDefaults sets runtime-determined default values for any properties that haven't been explicitly configured.
// Unlike static defaults, these values might change between runs based on the environment or system configuration.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
	cfg.Player.SocketPath = defaultSocketPath()
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

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	updateFn(cfg)

	return save(cfg, configPath)
}

// getConfigPath returns the path to the config file.  Uses the environment variable override if present, else tries
// to use OS config location defaults.
func getConfigPath() (string, error) {
	configPath := os.Getenv(envConfigPath)
	if configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "vidctl", "config.yaml"), nil
}

// createBaseDefaultConfig creates a config with all default values.  The buffer defaults match what the engine is
// asked for on mobile hosts: 15s minimum, 50s maximum, 2.5s before first frame and 5s after a rebuffer.
func createBaseDefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Type:         "mpv",
			Path:         "mpv",
			IPCTimeoutMs: 2000,
		},
		Playback: PlaybackConfig{
			SeekStepSeconds:    30,
			ProgressIntervalMs: 1000,
			MaxBitrate:         2000000,
			Buffer: BufferConfig{
				MinBufferMs:                      15000,
				MaxBufferMs:                      50000,
				BufferForPlaybackMs:              2500,
				BufferForPlaybackAfterRebufferMs: 5000,
				ForwardBufferSeconds:             10,
			},
		},
		UI: UIConfig{},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// defaultLogFilePath returns the path to the log file.  Tries to use expected OS location defaults.
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to logging in the current directory if home directory cannot be determined
		return filepath.Join(".", "vidctl.log")
	}

	switch runtime.GOOS {
	case "windows":
		// Windows:  %LOCALAPPDATA%\vidctl\logs
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, "vidctl", "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", "vidctl", "logs")
		}
	case "darwin":
		// macOS:  ~/Library/Logs/vidctl
		basePath = filepath.Join(homedir, "Library", "Logs", "vidctl")
	default:
		// Linux/BSD:  XDG_STATE_HOME
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, "vidctl", "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", "vidctl", "logs")
		}
	}

	if err := os.MkdirAll(basePath, 0700); err != nil {
		return filepath.Join(".", "vidctl.log")
	}
	return filepath.Join(basePath, "vidctl.log")
}

// defaultSocketPath returns the engine IPC endpoint for the current OS
func defaultSocketPath() string {
	switch runtime.GOOS {
	case "windows":
		// Windows uses named pipes instead of unix sockets
		return `\\.\pipe\vidctl-mpv`
	default:
		if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
			return filepath.Join(runtimeDir, "vidctl-mpv.sock")
		}
		return filepath.Join(os.TempDir(), "vidctl-mpv.sock")
	}
}
