package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"cocreate/pkg/config"
	"cocreate/pkg/logger"
	"cocreate/pkg/store"
	"cocreate/pkg/telemetry"
)

var now = func() time.Time { return time.Now().UTC() }

// RunOnce removes expired sessions and returns how many were (or, with
// dryRun, would have been) removed.
func RunOnce(ctx context.Context, dryRun bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	start := time.Now()
	n, err := store.PurgeExpiredSessions(now(), dryRun)
	if err != nil {
		logger.Error("retention_run_failed", "error", err)
		return n, err
	}
	if !dryRun {
		telemetry.SessionsPurged.Add(float64(n))
	}
	logger.Info("retention_run_done", "purged", n, "dry_run", dryRun, "duration_ms", time.Since(start).Milliseconds())
	return n, nil
}

// Start launches the expired-session sweeper when enabled. The returned stop
// func cancels the scheduler and waits for an in-flight run to finish.
func Start(ctx context.Context, ret config.RetentionConfig) (stop func(), err error) {
	if !ret.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}
	cronExpr := ret.Cron
	if cronExpr == "" {
		cronExpr = config.DefaultRetentionCron
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cronExpr)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cronExpr)
	}

	ctx2, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runScheduler(ctx2, cronExpr, ret.DryRun)
	}()
	logger.Info("retention_scheduler_started", "cron", cronExpr, "dry_run", ret.DryRun)
	return func() {
		cancel()
		wg.Wait()
	}, nil
}

// runScheduler sleeps until the next cron tick and runs a sweep, until ctx
// is cancelled. Runs execute inline so a slow sweep delays the next tick
// instead of overlapping it.
func runScheduler(ctx context.Context, cronExpr string, dryRun bool) {
	for {
		next, err := gronx.NextTickAfter(cronExpr, now(), false)
		wait := time.Until(next)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			wait = 30 * time.Second
		}
		if wait < time.Second {
			wait = time.Second
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			logger.Info("retention_scheduler_stopping")
			return
		case <-t.C:
		}
		if err == nil {
			_, _ = RunOnce(ctx, dryRun)
		}
	}
}
