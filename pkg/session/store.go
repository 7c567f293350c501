package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"
)

// Store loads and saves the whole State. Saves are last-write-wins.
type Store interface {
	Load() (State, error)
	Save(State) error
	Clear() error
}

// Update loads the state, applies fn and saves the result.
func Update(st Store, fn func(*State)) (State, error) {
	s, err := st.Load()
	if err != nil {
		return State{}, err
	}
	fn(&s)
	if err := st.Save(s); err != nil {
		return State{}, err
	}
	return s, nil
}

// FileStore keeps the state in a YAML file readable only by its owner.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

// Load returns the empty State when the file does not exist yet.
func (f *FileStore) Load() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read state: %w", err)
	}
	var s State
	if err := yaml.Unmarshal(b, &s); err != nil {
		return State{}, fmt.Errorf("parse state %s: %w", f.Path, err)
	}
	return s, nil
}

// Save writes to a temp file in the same directory and renames it over the
// old file, so readers see either the old or the new state.
func (f *FileStore) Save(s State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore keeps the state in memory.
type MemoryStore struct {
	mu sync.Mutex
	s  State
}

func (m *MemoryStore) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyState(m.s), nil
}

func (m *MemoryStore) Save(s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = copyState(s)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = State{}
	return nil
}

func copyState(s State) State {
	out := State{Auth: s.Auth}
	if s.Project != nil {
		p := *s.Project
		out.Project = &p
	}
	if s.Trouble != nil {
		t := *s.Trouble
		out.Trouble = &t
	}
	return out
}
