package config

import (
	"fmt"
	"os"
	"strconv"
)

const envConfigPath = "VIDCTL_CONFIG_PATH"

type envVar struct {
	name  string
	desc  string
	apply func(*Config, string) error
}

// EnvVarDoc describes a supported environment variable override
type EnvVarDoc struct {
	Name        string
	Description string
}

var supportedEnvVars = []envVar{
	{
		// Only here for documentation purposes.  It points to where the config should be loaded from and is handled
		// prior to loading the config.
		name:  envConfigPath,
		desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) error { return nil },
	},
	{
		name:  "VIDCTL_CONFIG_PLAYER_TYPE",
		desc:  "Sets the video engine type.  Should be one of `mpv` or `custom`.  Default: mpv",
		apply: func(c *Config, s string) error { c.Player.Type = s; return nil },
	},
	{
		name:  "VIDCTL_CONFIG_PLAYER_PATH",
		desc:  "Sets the path to the video engine binary.  Default: mpv",
		apply: func(c *Config, s string) error { c.Player.Path = s; return nil },
	},
	{
		name:  "VIDCTL_CONFIG_PLAYER_ARGS",
		desc:  "Sets additional video engine arguments.  Default: None",
		apply: func(c *Config, s string) error { c.Player.Args = s; return nil },
	},
	{
		name:  "VIDCTL_CONFIG_PLAYER_SOCKET_PATH",
		desc:  "Sets the engine IPC socket or named pipe.  Default: OS-specific",
		apply: func(c *Config, s string) error { c.Player.SocketPath = s; return nil },
	},
	{
		name: "VIDCTL_CONFIG_PLAYBACK_AUTO_PIP",
		desc: "Start playing immediately in a minimised presentation.  Default: false",
		apply: func(c *Config, s string) error {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return err
			}
			c.Playback.AutoPIP = v
			return nil
		},
	},
	{
		name: "VIDCTL_CONFIG_PLAYBACK_SEEK_STEP_SECONDS",
		desc: "Seconds jumped by the seek forward/backward controls.  Default: 30",
		apply: func(c *Config, s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return err
			}
			c.Playback.SeekStepSeconds = v
			return nil
		},
	},
	{
		name:  "VIDCTL_CONFIG_PLAYBACK_PREFERRED_QUALITY",
		desc:  "Quality label selected once tracks are known, e.g. 720p.  Default: auto",
		apply: func(c *Config, s string) error { c.Playback.PreferredQuality = s; return nil },
	},
	{
		name:  "VIDCTL_CONFIG_LOGGING_LEVEL",
		desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) error { c.Logging.Level = s; return nil },
	},
	{
		name:  "VIDCTL_CONFIG_LOGGING_FILE_PATH",
		desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) error { c.Logging.FilePath = s; return nil },
	},
}

func applyEnvVarOverrides(c *Config) error {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.name); value != "" {
			if err := envVar.apply(c, value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar.name, err)
			}
		}
	}
	return nil
}

// EnvVarDocs lists the supported environment variables in declaration order
func EnvVarDocs() []EnvVarDoc {
	docs := make([]EnvVarDoc, 0, len(supportedEnvVars))
	for _, v := range supportedEnvVars {
		docs = append(docs, EnvVarDoc{Name: v.name, Description: v.desc})
	}
	return docs
}
