package tui

import (
	"github.com/PizzaHomicide/vidctl/internal/config"
	"github.com/PizzaHomicide/vidctl/internal/playback"
	"github.com/PizzaHomicide/vidctl/internal/ui/tui/models"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the player for a session until the user quits or the session closes
func Run(cfg *config.Config, title string, session *playback.Session) error {
	app := models.NewAppModel(cfg, title, session.Handle(), session.Subscribe(), session.Snapshot())

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.Playback.AutoPIP {
		// The single status line is drawn inline
		opts = nil
	}

	p := tea.NewProgram(app, opts...)
	_, err := p.Run()
	return err
}
