package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zucenko/mazerace/config"
	"github.com/zucenko/mazerace/server"
)

const releaseVersion = "0.2.0"

type Server struct {
	router     *way.Router
	GameServer *server.GameServer
}

func newCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mazerace-server",
		Short:         "Authoritative server for two-player maze races.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.ConfigureLogging()
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	fs := cmd.Flags()
	config.AddGameFlags(fs, cfg)
	config.AddServerFlags(fs, cfg)
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		config.BindEnv(cmd.Flags())
	}
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	gameServer, err := server.NewGameServer(server.Settings{
		Size:         cfg.Size,
		EnforceTurns: cfg.EnforceTurns,
		MazeFile:     cfg.MazeFile,
		Seed:         cfg.Seed,
	})
	if err != nil {
		return err
	}
	s := Server{GameServer: gameServer}
	go s.GameServer.Loop(ctx)
	s.routes()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port)),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	listenErrs := make(chan error, 1)
	go func() {
		log.Infof("Listening on http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrs <- err
		}
	}()

	select {
	case err := <-listenErrs:
		log.WithError(err).Error("ListenAndServe")
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	config.LoadDotEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := &config.Config{}
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		log.Fatalln(err)
	}
}
