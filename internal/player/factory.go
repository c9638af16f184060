package player

import (
	"fmt"

	"github.com/PizzaHomicide/vidctl/internal/config"
	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/PizzaHomicide/vidctl/internal/playback"
)

// PlayerType defines the type of video engine to drive
type PlayerType string

const (
	// PlayerTypeMPV represents the MPV player
	PlayerTypeMPV PlayerType = "mpv"
	// PlayerTypeCustom represents a custom player executable
	PlayerTypeCustom PlayerType = "custom"
)

// NewLauncher creates the engine launcher selected by the configuration
func NewLauncher(cfg *config.Config) (playback.Launcher, error) {
	playerType := PlayerType(cfg.Player.Type)
	log.Info("Creating engine launcher", "type", playerType)

	switch playerType {
	case PlayerTypeMPV, "":
		return NewMPVLauncher(cfg), nil
	case PlayerTypeCustom:
		return nil, fmt.Errorf("custom player not yet implemented")
	default:
		log.Warn("Unknown player type, falling back to MPV", "type", playerType)
		return NewMPVLauncher(cfg), nil
	}
}
