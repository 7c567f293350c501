package shutdown

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteCrashDump(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "crash")
	p, err := WriteCrashDump(dir, "open store", errors.New("disk full"))
	if err != nil {
		t.Fatalf("WriteCrashDump: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	s := string(b)
	for _, want := range []string{"reason: open store", "error: disk full", "goroutine stacks"} {
		if !strings.Contains(s, want) {
			t.Fatalf("dump missing %q", want)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the dump in %s, found %d entries", dir, len(entries))
	}
}

func TestAbort_ExitsWithStatus2(t *testing.T) {
	code := -1
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = os.Exit })

	Abort("boom", errors.New("x"), t.TempDir())
	if code != 2 {
		t.Fatalf("expected exit 2 got %d", code)
	}
}

func TestSetupSignalHandler_ParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := SetupSignalHandler(parent)
	defer cancel()
	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("context not cancelled with parent")
	}
}
