package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/compose-network/rollup-configurator/configs"
	"github.com/compose-network/rollup-configurator/internal/build"
	"github.com/compose-network/rollup-configurator/internal/catalog"
	"github.com/compose-network/rollup-configurator/internal/compiler"
	"github.com/compose-network/rollup-configurator/internal/flags"
	"github.com/compose-network/rollup-configurator/internal/inspect"
	"github.com/compose-network/rollup-configurator/internal/l1"
	"github.com/compose-network/rollup-configurator/internal/metrics"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var CMD = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configurator HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.Values
		slog.Info("starting api server. Validating config", slog.Any("server", cfg.Server), slog.Any("services", cfg.Services))

		if err := cfg.Validate(); err != nil {
			return err
		}

		c, err := catalog.Embedded()
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		server := NewServer(
			c,
			l1.NewResolver(),
			compiler.NewDefault(),
			build.NewRequestor(cfg.Services.BuildURL, build.WithTimeout(cfg.Services.Timeout)),
			inspect.NewClient(cfg.Services.InspectURL, inspect.WithTimeout(cfg.Services.Timeout), inspect.WithCatalog(c)),
			metrics.New(),
			Options{
				DefaultChainID: cfg.L1.ChainID,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				MaxUploadBytes: cfg.Server.MaxUploadBytes,
			},
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return run(ctx, cfg.Server.ListenAddr, server.Routes())
	},
}

func init() {
	flags.MustDeclare(CMD.Flags(), []flags.Def[string]{
		{Name: "listen-addr", ViperKey: "server.listen-addr", Description: "Address the API listens on"},
	})
	flags.MustDeclare(CMD.Flags(), []flags.Def[[]string]{
		{Name: "allowed-origins", ViperKey: "server.allowed-origins", Description: "Origins allowed by CORS"},
	})
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
