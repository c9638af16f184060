package main

import (
	"fmt"

	"github.com/PizzaHomicide/vidctl/internal/config"
	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vidctl",
	Short: "Terminal control surface for an external video player",
	Long: `vidctl drives an external video engine (mpv by default) and shows its playback state in the terminal:
play/pause, seeking, buffering and quality selection.`,
	SilenceUsage: true,
}

// setup loads the configuration and installs the default logger.  The returned logger must be closed.
func setup() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		// It is unrecoverable if we cannot produce an application config
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.New(log.Config{
		Level:      cfg.Logging.Level,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialise logger: %w", err)
	}
	log.SetDefaultLogger(logger)
	return cfg, logger, nil
}
