package app

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"cocreate/internal/retention"
	"cocreate/pkg/auth"
	"cocreate/pkg/config"
	"cocreate/pkg/httpx"
	"cocreate/pkg/logger"
	"cocreate/pkg/state"
	"cocreate/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	paths     state.Paths
	version   string
	commit    string
	buildDate string

	srv           httpx.Server
	stopRetention func()
}

// New initializes everything that does not need a running context: config
// validation, runtime settings, the state layout, the audit sink, the store
// and its seed data. Call Run to start serving.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := validateConfig(eff); err != nil {
		return nil, err
	}
	config.SetRuntime(config.RuntimeFrom(eff.Config))

	paths, err := state.EnsureStateDirs(eff.DBPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}
	auditDir := eff.Config.Auth.AuditDir
	if auditDir == "" {
		auditDir = paths.Audit
	}
	if err := logger.AttachAuditFileSink(auditDir); err != nil {
		logger.Warn("audit_sink_unavailable", "dir", auditDir, "error", err)
	}

	if err := store.Open(paths.Store); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", paths.Store, err)
	}
	if err := store.SeedDefaults(eff.Config.Seed.Demo, auth.HashPassword); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	return &App{eff: eff, paths: paths, version: version, commit: commit, buildDate: buildDate}, nil
}

// Paths returns the on-disk layout the app runs with.
func (a *App) Paths() state.Paths { return a.paths }

// Run starts the session sweeper and the HTTP server and blocks until ctx is
// canceled or the server fails.
func (a *App) Run(ctx context.Context) error {
	stop, err := retention.Start(ctx, a.eff.Config.Retention)
	if err != nil {
		return err
	}
	a.stopRetention = stop

	a.printBanner()

	errCh, err := a.startHTTP()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the HTTP server and sweeper and closes the store.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	if a.srv != nil {
		if err := a.srv.Shutdown(ctx); err != nil {
			logger.Error("http_shutdown_failed", "error", err)
			firstErr = err
		}
	}
	if a.stopRetention != nil {
		a.stopRetention()
	}
	if err := store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	logger.Info("shutdown_complete", "at", time.Now().UTC().Format(time.RFC3339))
	logger.Sync()
	return firstErr
}
