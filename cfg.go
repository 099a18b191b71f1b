package main

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zucenko/mazerace/client"
	"github.com/zucenko/mazerace/config"
)

const releaseVersion = "0.2.0"

func newCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mazerace",
		Short:         "Race an opponent through a maze, one step at a time.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		PreRun: func(cmd *cobra.Command, args []string) {
			config.BindEnv(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.ConfigureLogging()
			if err := cfg.ValidateClient(); err != nil {
				return err
			}
			return play(cmd.Context(), cfg)
		},
	}
	fs := cmd.Flags()
	config.AddGameFlags(fs, cfg)
	config.AddClientFlags(fs, cfg)
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	return cmd
}

func clientOptions(cfg *config.Config) client.Options {
	return client.Options{
		Size:         cfg.Size,
		EnforceTurns: cfg.EnforceTurns,
		Optimistic:   cfg.Optimistic,
	}
}

// play connects, runs the session in the background and the window on the
// calling goroutine until either ends.
func play(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session, err := client.Connect(ctx, cfg.URL, clientOptions(cfg))
	if err != nil {
		return err
	}
	log.Infof("connected to %s", cfg.URL)

	game, err := NewGame(session)
	if err != nil {
		return err
	}
	go func() {
		if err := session.Loop(ctx); err != nil {
			log.WithError(err).Warn("session ended")
		}
		game.Disconnected()
	}()
	return game.Run()
}
