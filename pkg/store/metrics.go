package store

import (
	"io/fs"
	"path/filepath"
)

// PebbleMetrics is a compact view of engine metrics exported on /metrics.
type PebbleMetrics struct {
	DiskBytes         uint64
	WALBytes          uint64
	L0Files           int64
	CompactionBacklog uint64
}

// GetPebbleMetrics returns best-effort metrics about the pebble DB.
func GetPebbleMetrics() PebbleMetrics {
	var m PebbleMetrics
	if db == nil {
		return m
	}
	if pm := db.Metrics(); pm != nil {
		m.DiskBytes = pm.DiskSpaceUsage()
		m.WALBytes = pm.WAL.Size
		m.L0Files = pm.Levels[0].NumFiles
		m.CompactionBacklog = pm.Compact.EstimatedDebt
	}
	if m.DiskBytes == 0 && dbPath != "" {
		m.DiskBytes = dirSize(dbPath)
	}
	return m
}

func dirSize(root string) uint64 {
	var total uint64
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += uint64(fi.Size())
		}
		return nil
	})
	return total
}

// Counts reports how many records of each entity are stored.
func Counts() (map[string]int, error) {
	out := map[string]int{}
	for name, prefix := range map[string]string{
		"users":    userPrefix,
		"sessions": sessionPrefix,
		"projects": projectPrefix,
		"troubles": troublePrefix,
		"messages": messageIDPrefix,
	} {
		n, err := countPrefix([]byte(prefix))
		if err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, nil
}
