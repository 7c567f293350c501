package state

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureStateDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "db")
	p, err := EnsureStateDirs(root)
	if err != nil {
		t.Fatalf("EnsureStateDirs: %v", err)
	}
	for _, dir := range []string{p.Store, p.Audit, p.Crash, p.Tmp} {
		fi, err := os.Stat(dir)
		if err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if p != PathsFor(root) {
		t.Fatalf("paths mismatch: %+v vs %+v", p, PathsFor(root))
	}
	// second call is a no-op
	if _, err := EnsureStateDirs(root); err != nil {
		t.Fatalf("second EnsureStateDirs: %v", err)
	}
}

func TestEnsureStateDirs_RejectsSymlinkAndFile(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "state"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(root, "state", "audit")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := EnsureStateDirs(root); err == nil {
		t.Fatalf("expected symlink rejection")
	}

	root2 := t.TempDir()
	if err := os.WriteFile(filepath.Join(root2, "store"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureStateDirs(root2); err == nil {
		t.Fatalf("expected error when store is a file")
	}
	if _, err := EnsureStateDirs(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
