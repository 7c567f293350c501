package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"cocreate/pkg/logger"
)

var (
	db     *pebble.DB
	dbPath string

	// writeMu serializes read-modify-write sequences (id allocation,
	// uniqueness checks, counters). Single-key reads never take it.
	writeMu sync.Mutex
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	errNotOpen  = errors.New("pebble not opened; call store.Open first")
)

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	dbPath = ""
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func idKey(prefix string, id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefix, id))
}

// nextID allocates the next id of a sequence inside batch b. Callers must
// hold writeMu.
func nextID(b *pebble.Batch, name string) (int64, error) {
	key := []byte("seq:" + name)
	var cur uint64
	v, closer, err := db.Get(key)
	switch {
	case err == nil:
		if len(v) == 8 {
			cur = binary.BigEndian.Uint64(v)
		}
		closer.Close()
	case errors.Is(err, pebble.ErrNotFound):
	default:
		return 0, err
	}
	cur++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, cur)
	if err := b.Set(key, buf, nil); err != nil {
		return 0, err
	}
	return int64(cur), nil
}

func getJSON(key []byte, out interface{}) error {
	if db == nil {
		return errNotOpen
	}
	v, closer, err := db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return ErrNotFound
		}
		logger.Error("get_key_failed", "key", string(key), "error", err)
		return err
	}
	defer closer.Close()
	if err := json.Unmarshal(v, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func setJSON(w pebble.Writer, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return w.Set(key, data, nil)
}

func has(key []byte) (bool, error) {
	if db == nil {
		return false, errNotOpen
	}
	_, closer, err := db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	closer.Close()
	return true, nil
}

// scanPrefix calls fn for every key with the given prefix in key order.
// Values passed to fn are only valid for the duration of the call.
func scanPrefix(prefix []byte, fn func(k, v []byte) error) error {
	if db == nil {
		return errNotOpen
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

func countPrefix(prefix []byte) (int, error) {
	n := 0
	err := scanPrefix(prefix, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

func commit(b *pebble.Batch) error {
	return b.Commit(pebble.Sync)
}

// ListKeys returns all keys (as strings) that start with the given prefix.
func ListKeys(prefix string) ([]string, error) {
	var out []string
	err := scanPrefix([]byte(prefix), func(k, _ []byte) error {
		out = append(out, string(k))
		return nil
	})
	return out, err
}
