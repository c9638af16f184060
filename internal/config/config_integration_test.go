package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()

	tmpConfigPath := filepath.Join(t.TempDir(), "config.yaml")
	setEnv(t, envConfigPath, tmpConfigPath)

	t.Cleanup(func() {
		cleanupEnvVars(t)
	})

	return tmpConfigPath
}

// TestConfigIntegration tests the config package with actual file operations
// This test uses a temporary directory to avoid interfering with real user configs
func TestConfigIntegration(t *testing.T) {
	t.Run("LoadDefaultConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		config := loadConfig(t)

		assert.Equal(t, "mpv", config.Player.Type)
		assert.Equal(t, 2000, config.Player.IPCTimeoutMs)
		assert.False(t, config.Playback.AutoPIP)
		assert.Equal(t, 30.0, config.Playback.SeekStepSeconds)
		assert.Equal(t, 1000, config.Playback.ProgressIntervalMs)
		assert.Equal(t, 2000000, config.Playback.MaxBitrate)
		assert.Equal(t, 15000, config.Playback.Buffer.MinBufferMs)
		assert.Equal(t, 10, config.Playback.Buffer.ForwardBufferSeconds)
		assert.True(t, config.UI.ControlsVisible())
		assert.Equal(t, "info", config.Logging.Level)
		assert.NotEmpty(t, config.Logging.FilePath)
		assert.NotEmpty(t, config.Player.SocketPath)

		_, err := os.Stat(tmpConfigPath)
		require.NoError(t, err, "default config file should have been written")

		// Load the file from disk to assert that the 'dynamic' configurations were not saved when the default config was written
		savedConfig, err := loadFromDisk(tmpConfigPath)
		require.NoError(t, err)
		assert.Empty(t, savedConfig.Logging.FilePath)
		assert.Empty(t, savedConfig.Player.SocketPath)
	})

	t.Run("SaveAndLoadConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		hidden := false
		customConfig := &Config{
			Player: PlayerConfig{
				Type: "custom",
				Path: "/usr/bin/mpv",
				Args: "--fullscreen",
			},
			Playback: PlaybackConfig{
				AutoPIP:          true,
				SeekStepSeconds:  10,
				PreferredQuality: "720p",
			},
			UI: UIConfig{ShowControls: &hidden},
			Logging: LoggingConfig{
				Level:    "error",
				FilePath: "/var/log/vidctl.log",
			},
		}

		saveConfig(t, customConfig, tmpConfigPath)
		loadedConfig := loadConfig(t)

		assert.Equal(t, "custom", loadedConfig.Player.Type)
		assert.Equal(t, "/usr/bin/mpv", loadedConfig.Player.Path)
		assert.Equal(t, "--fullscreen", loadedConfig.Player.Args)
		assert.True(t, loadedConfig.Playback.AutoPIP)
		assert.Equal(t, 10.0, loadedConfig.Playback.SeekStepSeconds)
		assert.Equal(t, "720p", loadedConfig.Playback.PreferredQuality)
		assert.False(t, loadedConfig.UI.ControlsVisible())
		assert.Equal(t, "error", loadedConfig.Logging.Level)
		assert.Equal(t, "/var/log/vidctl.log", loadedConfig.Logging.FilePath)

		// Values missing from the file keep their defaults
		assert.Equal(t, 1000, loadedConfig.Playback.ProgressIntervalMs)
		assert.Equal(t, 5000, loadedConfig.Playback.Buffer.BufferForPlaybackAfterRebufferMs)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		require.NoError(t, os.WriteFile(tmpConfigPath, []byte("invalid: yaml: ["), 0600))

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("EnvironmentVariableOverrides", func(t *testing.T) {
		setupTestConfig(t)

		setEnv(t, "VIDCTL_CONFIG_PLAYER_TYPE", "custom")
		setEnv(t, "VIDCTL_CONFIG_PLAYER_PATH", "/mpv")
		setEnv(t, "VIDCTL_CONFIG_PLAYER_ARGS", "--fullscreen")
		setEnv(t, "VIDCTL_CONFIG_PLAYER_SOCKET_PATH", "/tmp/test.sock")
		setEnv(t, "VIDCTL_CONFIG_PLAYBACK_AUTO_PIP", "true")
		setEnv(t, "VIDCTL_CONFIG_PLAYBACK_SEEK_STEP_SECONDS", "15")
		setEnv(t, "VIDCTL_CONFIG_LOGGING_LEVEL", "warn")
		setEnv(t, "VIDCTL_CONFIG_LOGGING_FILE_PATH", "/vidctl.log")

		config := loadConfig(t)

		assert.Equal(t, "custom", config.Player.Type)
		assert.Equal(t, "/mpv", config.Player.Path)
		assert.Equal(t, "--fullscreen", config.Player.Args)
		assert.Equal(t, "/tmp/test.sock", config.Player.SocketPath)
		assert.True(t, config.Playback.AutoPIP)
		assert.Equal(t, 15.0, config.Playback.SeekStepSeconds)
		assert.Equal(t, "warn", config.Logging.Level)
		assert.Equal(t, "/vidctl.log", config.Logging.FilePath)

		// Env var overrides must not be persisted to disk
		unsetEnv(t, "VIDCTL_CONFIG_LOGGING_LEVEL")
		config = loadConfig(t)
		assert.Equal(t, "info", config.Logging.Level)
	})

	t.Run("InvalidEnvironmentVariable", func(t *testing.T) {
		setupTestConfig(t)
		setEnv(t, "VIDCTL_CONFIG_PLAYBACK_AUTO_PIP", "sometimes")

		_, err := Load()
		assert.ErrorContains(t, err, "VIDCTL_CONFIG_PLAYBACK_AUTO_PIP")
	})

	t.Run("ModifyConfig", func(t *testing.T) {
		setupTestConfig(t)
		config := loadConfig(t)
		assert.False(t, config.Playback.AutoPIP)

		err := UpdateConfig(func(config *Config) {
			config.Playback.AutoPIP = true
		})
		require.NoError(t, err)

		config = loadConfig(t)
		assert.True(t, config.Playback.AutoPIP)
	})
}

func TestEnvVarDocs(t *testing.T) {
	docs := EnvVarDocs()
	require.Len(t, docs, len(supportedEnvVars))
	assert.Equal(t, envConfigPath, docs[0].Name)
	for _, doc := range docs {
		assert.True(t, strings.HasPrefix(doc.Name, "VIDCTL_CONFIG"), doc.Name)
		assert.NotEmpty(t, doc.Description, doc.Name)
	}
}

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("Failed to set environment variable: %v", err)
	}
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("Failed to unset environment variable: %v", err)
	}
}

func saveConfig(t *testing.T, config *Config, configPath string) {
	t.Helper()
	if err := save(config, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
}

func loadConfig(t *testing.T) *Config {
	t.Helper()
	config, err := Load()
	if err != nil {
		t.Fatalf("Loading of config failed: %v", err)
	}
	return config
}

// Removes any env vars with the VIDCTL_CONFIG prefix to ensure test isolation
func cleanupEnvVars(t *testing.T) {
	t.Helper()

	for _, envVar := range os.Environ() {
		if key := strings.Split(envVar, "=")[0]; strings.HasPrefix(key, "VIDCTL_CONFIG") {
			unsetEnv(t, key)
		}
	}
}
