// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/inkpad/inkpad/internal/config"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/logging"
	"github.com/inkpad/inkpad/internal/observability"
	"github.com/inkpad/inkpad/internal/plugin"
)

const shutdownTimeout = 10 * time.Second

// Metrics listener bind attempts after the first, for restarts racing the
// previous process's socket.
const (
	bindRetries = 3
	bindBackoff = 50 * time.Millisecond
)

// NewRunCmd creates the run subcommand.
func NewRunCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the plugin runtime",
		Long: `Start the plugin runtime: install the built-in plugins and the script
plugins from the plugins directory, serve metrics and health probes if
configured, and run until interrupted. Active plugins are deactivated in
reverse activation order on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return oops.Wrapf(err, "invalid configuration")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runRuntime(ctx, cfg, newLogger(cmd, cfg))
		},
	}
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level, _ := logging.ParseLevel(cfg.Log.Level) //nolint:errcheck // validated by config.Load
	logger := logging.Setup("inkpad", version, cfg.Log.Format, level, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return logger
}

// runRuntime starts the runtime and blocks until ctx is done or the
// observability server fails.
func runRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rt := newRuntime(cfg, logger)

	if cfg.Metrics.Addr != "" {
		obs := observability.NewServer(cfg.Metrics.Addr, rt.isReady,
			eventbus.RegisterMetrics,
			plugin.RegisterMetrics,
		)
		obsErrCh, err := startObservability(ctx, obs, logger)
		if err != nil {
			return oops.Wrapf(err, "failed to start observability server")
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			if stopErr := obs.Stop(stopCtx); stopErr != nil {
				logger.Warn("failed to stop observability server", "error", stopErr)
			}
		}()
		go monitorServerErrors(ctx, cancel, obsErrCh, logger)
	}

	if err := rt.start(ctx, cfg, logger); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down plugin runtime")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := rt.manager.Shutdown(shutdownCtx); err != nil {
		return oops.Wrapf(err, "plugin shutdown")
	}
	return nil
}

func startObservability(ctx context.Context, obs *observability.Server, logger *slog.Logger) (<-chan error, error) {
	var errCh <-chan error
	backoff := retry.WithMaxRetries(bindRetries, retry.NewExponential(bindBackoff))
	err := retry.Do(ctx, backoff, func(context.Context) error {
		ch, err := obs.Start()
		if err != nil {
			logger.Warn("observability server failed to start", "error", err)
			return retry.RetryableError(err)
		}
		errCh = ch
		return nil
	})
	return errCh, err
}

// monitorServerErrors cancels the runtime when the server reports a failure.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logger.Error("observability server failed", "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
