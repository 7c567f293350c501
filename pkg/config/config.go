package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// RuntimeConfig holds derived runtime values that handlers query while
// serving requests (populated during startup from the effective config).
type RuntimeConfig struct {
	SessionTTL    time.Duration
	RecentWindow  time.Duration
	DefaultLimit  int
	MaxMessageLen int
	BcryptCost    int
	MaxBody       int64
}

var (
	runtimeMu  sync.RWMutex
	runtimeCfg *RuntimeConfig
)

// SetRuntime sets the canonical runtime config used by the running server.
func SetRuntime(rc *RuntimeConfig) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtimeCfg = rc
}

// GetRuntime returns a copy of the runtime config with defaults filled in.
func GetRuntime() RuntimeConfig {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	var out RuntimeConfig
	if runtimeCfg != nil {
		out = *runtimeCfg
	}
	if out.SessionTTL <= 0 {
		out.SessionTTL = DefaultSessionTTL
	}
	if out.RecentWindow <= 0 {
		out.RecentWindow = DefaultRecentWindow
	}
	if out.DefaultLimit <= 0 {
		out.DefaultLimit = DefaultProjectLimit
	}
	if out.MaxMessageLen <= 0 {
		out.MaxMessageLen = DefaultMaxMessageLen
	}
	if out.MaxBody <= 0 {
		out.MaxBody = DefaultMaxBody.Int64()
	}
	return out
}

// RuntimeFrom derives the runtime config from an effective config.
func RuntimeFrom(cfg *Config) *RuntimeConfig {
	return &RuntimeConfig{
		SessionTTL:    cfg.Auth.SessionTTL.Duration(),
		RecentWindow:  cfg.Projects.RecentWindow.Duration(),
		DefaultLimit:  cfg.Projects.DefaultLimit,
		MaxMessageLen: cfg.Messages.MaxLen,
		BcryptCost:    cfg.Auth.BcryptCost,
		MaxBody:       cfg.Server.MaxBody.Int64(),
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveConfigPath decides the config file path using the flag-provided value
// and the environment variable `COCREATE_CONFIG` when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("COCREATE_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
