package retention

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"cocreate/pkg/config"
	"cocreate/pkg/models"
	"cocreate/pkg/store"
)

func openStore(t *testing.T) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
}

func TestRunOnce_PurgesExpiredSessions(t *testing.T) {
	openStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return base }
	t.Cleanup(func() { now = func() time.Time { return time.Now().UTC() } })

	for i, exp := range []time.Time{base.Add(-time.Hour), base.Add(-time.Minute), base.Add(time.Hour)} {
		s := models.Session{Token: string(rune('a' + i)), UserID: 1, UserName: "Owl", CreatedAt: base.Add(-2 * time.Hour), ExpiresAt: exp}
		if err := store.SaveSession(s); err != nil {
			t.Fatalf("SaveSession: %v", err)
		}
	}

	n, err := RunOnce(context.Background(), true)
	if err != nil || n != 2 {
		t.Fatalf("dry run: n=%d err=%v", n, err)
	}
	n, err = RunOnce(context.Background(), false)
	if err != nil || n != 2 {
		t.Fatalf("run: n=%d err=%v", n, err)
	}
	if _, err := store.GetSession("c", base); err != nil {
		t.Fatalf("live session removed: %v", err)
	}
	if n, _ := RunOnce(context.Background(), false); n != 0 {
		t.Fatalf("second run purged %d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunOnce(ctx, false); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestStart_DisabledAndInvalidCron(t *testing.T) {
	stop, err := Start(context.Background(), config.RetentionConfig{Enabled: false})
	if err != nil {
		t.Fatalf("disabled: %v", err)
	}
	stop()

	if _, err := Start(context.Background(), config.RetentionConfig{Enabled: true, Cron: "not a cron"}); err == nil {
		t.Fatalf("expected invalid cron error")
	}
}

func TestStart_StopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	stop, err := Start(context.Background(), config.RetentionConfig{Enabled: true, Cron: "0 3 * * *"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	stop()
}
