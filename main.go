package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/blixt/go-switchboard/config"
	"github.com/blixt/go-switchboard/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv("SWITCHBOARD_CONFIG"), ".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logging.New(cfg.Log.Logging(), os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("Switchboard stopped with error")
		closeLog()
		os.Exit(1)
	}
	log.Info().Msg("Switchboard stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	s := newServer(cfg, log)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("default_server", cfg.DefaultServer).
			Strs("servers", cfg.Servers).
			Stringer("mode", cfg.Announce.Mode).
			Msg("Switchboard listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown signal received, initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Upgraded websocket connections are not tracked by the http server, so
	// drop every session through the proxy as well.
	err := httpServer.Shutdown(shutdownCtx)
	s.proxy.Close()
	return err
}
