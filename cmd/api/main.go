package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"NutriAssist/internal/chat"
	"NutriAssist/internal/completion"
	"NutriAssist/internal/config"
	"NutriAssist/internal/notifier"
	"NutriAssist/internal/server"
	"NutriAssist/internal/utility"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func gracefulShutdown(ctx context.Context, apiServer *http.Server) error {
	// Wait for the interrupt signal.
	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")

	// The server has 5 seconds to finish the requests it is currently handling.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server exiting")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load configuration")
	}
	utility.SetupLogger(cfg.AppEnv, cfg.LogLevel)

	completer, err := completion.New(cfg.Completion)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create completion client")
	}
	mailer := notifier.NewMailer(cfg.SMTP, log.Logger)

	registry, err := chat.NewRegistry(cfg.MaxSessions, func(id string) *chat.Session {
		return chat.NewSession(id, completer, mailer, log.Logger)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("could not create session registry")
	}

	apiServer := server.NewServer(cfg, registry)

	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", apiServer.Addr).Str("provider", cfg.Completion.Provider).Msg("http server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := gracefulShutdown(gctx, apiServer)
		stop() // Allow Ctrl+C to force shutdown
		return err
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server error")
	}
	log.Info().Msg("Graceful shutdown complete.")
}
