package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dreamware/pokerd/internal/broadcast"
	"github.com/dreamware/pokerd/internal/config"
	"github.com/dreamware/pokerd/internal/coordinator"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(v *viper.Viper, configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, *configFile)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", config.Default().ListenAddr, "address to listen on")
	flags.Int("max-sessions", config.Default().MaxSessions, "maximum number of concurrent sessions")
	flags.Duration("grace-period", config.Default().GracePeriod, "how long a disconnected facilitator keeps the role")
	flags.String("log-level", config.Default().LogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", config.Default().LogFormat, "log format (text or json)")
	for key, name := range map[string]string{
		config.KeyListenAddr:  "listen",
		config.KeyMaxSessions: "max-sessions",
		config.KeyGracePeriod: "grace-period",
		config.KeyLogLevel:    "log-level",
		config.KeyLogFormat:   "log-format",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
	return cmd
}

func newCoordinator(cfg config.Config, log *slog.Logger) *coordinator.Coordinator {
	return coordinator.New(coordinator.Options{
		MaxSessions:     cfg.MaxSessions,
		MaxParticipants: cfg.MaxParticipants,
		SessionTimeout:  cfg.SessionTimeout,
		GracePeriod:     cfg.GracePeriod,
		GraceWarning:    cfg.GraceWarning,
		DeltaMaxGap:     cfg.DeltaMaxGap,
		Broadcaster:     broadcast.New(cfg.SubscriberBuffer, cfg.HistorySize),
		Logger:          log,
	})
}

// serve runs the server until ctx is cancelled, then shuts down in order:
// stop accepting requests, stop the sweeper, then close the coordinator,
// which ends every open push channel.
func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	coord := newCoordinator(cfg, log)
	srv := newServer(coord, log)

	sweeper := coordinator.NewSweeper(coord, cfg.SweepInterval)
	go sweeper.Start(ctx)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("pokerd listening",
			"addr", cfg.ListenAddr,
			"max_sessions", cfg.MaxSessions,
			"max_participants", cfg.MaxParticipants,
			"version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			serveErr = fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	sweeper.Stop()
	coord.Close()
	log.Info("pokerd stopped")
	return serveErr
}
