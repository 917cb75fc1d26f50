package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/cli/config"
	httpctrl "github.com/incubo-lab/pitchreview/pkg/controller/http"
	"github.com/incubo-lab/pitchreview/pkg/service/worker"
	"github.com/incubo-lab/pitchreview/pkg/usecase"
	"github.com/incubo-lab/pitchreview/pkg/utils/logging"
	"github.com/incubo-lab/pitchreview/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var editIdle, reapInterval time.Duration
	var repoCfg config.Repository
	var sessionCfg config.Session
	var authCfg config.Auth

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("PITCHREVIEW_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "edit-session-timeout",
			Usage:       "Release score edit sessions idle for this long (0 disables)",
			Value:       30 * time.Minute,
			Sources:     cli.EnvVars("PITCHREVIEW_EDIT_SESSION_TIMEOUT"),
			Destination: &editIdle,
		},
		&cli.DurationFlag{
			Name:        "edit-session-check-interval",
			Usage:       "How often idle edit sessions are checked",
			Value:       time.Minute,
			Sources:     cli.EnvVars("PITCHREVIEW_EDIT_SESSION_CHECK_INTERVAL"),
			Destination: &reapInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, sessionCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			sessions, closeSessions, err := sessionCfg.Configure(ctx, repo)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize session store")
			}
			defer closeSessions()

			// Configure authentication
			authUC, err := authCfg.Configure(sessions)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authCfg.IsNoAuthMode() {
				logging.Default().Warn("Running in no-auth mode (development only)")
			} else {
				logging.Default().Info("Bearer token authentication enabled", "auth", authCfg)
			}

			uc := usecase.New(repo,
				usecase.WithAuth(authUC),
				usecase.WithSessionRepository(sessions),
			)

			if editIdle > 0 {
				if reapInterval <= 0 {
					return goerr.Wrap(config.ErrInvalidConfig, "edit session check interval must be positive",
						goerr.V(config.FlagKey, "edit-session-check-interval"))
				}
				reaper := worker.NewEditSessionReaper(uc.Score, editIdle, reapInterval)
				reaper.Start(ctx)
				defer reaper.Stop()
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logging.Default().Info("Context cancelled, shutting down")
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)
			}

			// Create shutdown context with timeout
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			// Attempt graceful shutdown
			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
