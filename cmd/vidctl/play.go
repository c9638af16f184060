package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/PizzaHomicide/vidctl/internal/playback"
	"github.com/PizzaHomicide/vidctl/internal/player"
	"github.com/PizzaHomicide/vidctl/internal/ui/tui"
	"github.com/PizzaHomicide/vidctl/internal/version"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type playFlags struct {
	autoPIP        bool
	headless       bool
	quality        string
	reloadAttempts int
}

var flags playFlags

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolVar(&flags.autoPIP, "auto-pip", false, "Start playing immediately in picture-in-picture")
	playCmd.Flags().BoolVar(&flags.headless, "headless", false, "Run without the TUI and print progress as JSON lines")
	playCmd.Flags().StringVarP(&flags.quality, "quality", "q", "", "Preferred quality label, e.g. 720p")
	playCmd.Flags().IntVar(&flags.reloadAttempts, "reload-attempts", 0, "Reload the video up to this many times after a source error")
}

var playCmd = &cobra.Command{
	Use:   "play URL",
	Short: "Play a video and control it from the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, args[0])
	},
}

func runPlay(cmd *cobra.Command, videoURL string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	log.Info("Starting up vidctl", "version", version.GetVersion(), "build_time", version.GetBuildTime())

	if cmd.Flags().Changed("auto-pip") {
		cfg.Playback.AutoPIP = flags.autoPIP
	}
	if flags.quality != "" {
		cfg.Playback.PreferredQuality = flags.quality
	}

	launcher, err := player.NewLauncher(cfg)
	if err != nil {
		return fmt.Errorf("failed to create engine launcher: %w", err)
	}

	opts := playback.Options{
		VideoURL:         videoURL,
		AutoPIP:          cfg.Playback.AutoPIP,
		HideControls:     !cfg.UI.ControlsVisible(),
		PreferredQuality: cfg.Playback.PreferredQuality,
		Logger:           logger,
	}
	if flags.reloadAttempts > 0 {
		opts.Recovery = map[playback.ErrorKind]playback.RecoveryPolicy{
			playback.ErrorKindSource: playback.ReloadSource{MaxAttempts: flags.reloadAttempts},
		}
	}

	var out *jsonLines
	if flags.headless {
		out = newJSONLines(cmd.OutOrStdout())
		opts.OnProgress = out.progress
	}

	session, err := playback.New(launcher, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Run(ctx)
	})

	if flags.headless {
		updates := session.Subscribe()
		if !opts.AutoPIP {
			session.Handle().RequestPlay()
		}
		g.Go(func() error {
			out.states(updates)
			return nil
		})
	} else {
		g.Go(func() error {
			defer session.Close()
			return tui.Run(cfg, titleFromURL(videoURL), session)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Unhandled error during playback", "error", err)
		return err
	}

	log.Info("vidctl shutting down.  Goodbye!")
	return nil
}

// titleFromURL is the last path element of the video URL, or the host when there is none
func titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if base := path.Base(u.Path); base != "." && base != "/" {
		if unescaped, err := url.PathUnescape(base); err == nil {
			return unescaped
		}
		return base
	}
	if u.Host != "" {
		return u.Host
	}
	return raw
}
