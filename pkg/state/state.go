package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the runtime folder layout under a database root.
type Paths struct {
	Root  string
	Store string // pebble data
	State string
	Audit string
	Crash string
	Tmp   string
}

// PathsFor returns the layout rooted at dbPath without touching the disk.
func PathsFor(dbPath string) Paths {
	statePath := filepath.Join(dbPath, "state")
	return Paths{
		Root:  dbPath,
		Store: filepath.Join(dbPath, "store"),
		State: statePath,
		Audit: filepath.Join(statePath, "audit"),
		Crash: filepath.Join(statePath, "crash"),
		Tmp:   filepath.Join(statePath, "tmp"),
	}
}

// EnsureStateDirs creates the layout under dbPath. It rejects symlinks and
// group/other-writable directories and checks each one is writable.
func EnsureStateDirs(dbPath string) (Paths, error) {
	if dbPath == "" {
		return Paths{}, fmt.Errorf("empty database path")
	}
	p := PathsFor(dbPath)
	for _, dir := range []string{p.Store, p.Audit, p.Crash, p.Tmp} {
		if err := ensureDir(dir); err != nil {
			return Paths{}, err
		}
	}
	return p, nil
}

func ensureDir(p string) error {
	if fi, err := os.Lstat(p); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path is a symlink: %s", p)
		}
		if !fi.IsDir() {
			return fmt.Errorf("path exists and is not a directory: %s", p)
		}
		if fi.Mode().Perm()&0o022 != 0 {
			return fmt.Errorf("path has permissive mode (group/other write): %s", p)
		}
	}
	if err := os.MkdirAll(p, 0o700); err != nil {
		return fmt.Errorf("cannot create path %s: %w", p, err)
	}

	// writability check
	tmp, err := os.CreateTemp(p, ".validate-*")
	if err != nil {
		return fmt.Errorf("path not writable: %s: %w", p, err)
	}
	tmp.Close()
	_ = os.Remove(tmp.Name())
	return nil
}
