package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	DB     string
	Config string
	Engine string
	Set    map[string]bool
}

// EffectiveConfigResult is the merged configuration the server runs with.
type EffectiveConfigResult struct {
	Config *Config
	Addr   string
	DBPath string
	Source string // comma separated: config, env, flags
}

// ParseConfigFlags parses command-line flags and returns them as a Flags struct.
func ParseConfigFlags(args []string) (Flags, error) {
	fs := pflag.NewFlagSet("cocreate", pflag.ContinueOnError)
	addr := fs.String("addr", ":8000", "HTTP listen address")
	db := fs.String("db", "./.database", "Pebble DB path")
	cfgPath := fs.String("config", "./config.yaml", "Path to config file")
	engine := fs.String("engine", "nethttp", "HTTP engine: nethttp or fasthttp")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *pflag.Flag) { set[f.Name] = true })
	return Flags{Addr: *addr, DB: *db, Config: *cfgPath, Engine: *engine, Set: set}, nil
}

// ParseConfigFile resolves the config path and loads the YAML file. It
// returns the parsed config, a boolean indicating whether the file was
// present, and an error for fatal parsing problems.
func ParseConfigFile(flags Flags) (*Config, bool, error) {
	cfgPath := ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, err := Load(cfgPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, false, nil
		}
		return nil, false, err
	}
	return cfg, true, nil
}

func parseList(v string) []string {
	if v == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ApplyEnv overlays COCREATE_* environment variables onto cfg and reports
// whether any were present.
func ApplyEnv(cfg *Config) (bool, error) {
	envUsed := false
	get := func(name string) (string, bool) {
		v, ok := os.LookupEnv("COCREATE_" + name)
		if ok && strings.TrimSpace(v) != "" {
			envUsed = true
			return strings.TrimSpace(v), true
		}
		return "", false
	}

	if v, ok := get("ADDR"); ok {
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v, ok := get("PORT"); ok {
		pi, err := strconv.Atoi(v)
		if err != nil {
			return envUsed, fmt.Errorf("COCREATE_PORT: %w", err)
		}
		cfg.Server.Port = pi
	}
	if v, ok := get("DB_PATH"); ok {
		cfg.Server.DBPath = v
	}
	if v, ok := get("ENGINE"); ok {
		cfg.Server.Engine = v
	}
	if v, ok := get("MAX_BODY"); ok {
		sz, err := ParseSize(v)
		if err != nil {
			return envUsed, fmt.Errorf("COCREATE_MAX_BODY: %w", err)
		}
		cfg.Server.MaxBody = sz
	}
	if v, ok := get("TLS_CERT"); ok {
		cfg.Server.TLS.CertFile = v
	}
	if v, ok := get("TLS_KEY"); ok {
		cfg.Server.TLS.KeyFile = v
	}
	if v, ok := get("CORS_ORIGINS"); ok {
		cfg.Security.CORS.AllowedOrigins = parseList(v)
	}
	if v, ok := get("RATE_RPS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envUsed, fmt.Errorf("COCREATE_RATE_RPS: %w", err)
		}
		cfg.Security.RateLimit.RPS = f
	}
	if v, ok := get("RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envUsed, fmt.Errorf("COCREATE_RATE_BURST: %w", err)
		}
		cfg.Security.RateLimit.Burst = n
	}
	if v, ok := get("IP_WHITELIST"); ok {
		cfg.Security.IPWhitelist = parseList(v)
	}
	if v, ok := get("SESSION_TTL"); ok {
		d, err := ParseDuration(v)
		if err != nil {
			return envUsed, fmt.Errorf("COCREATE_SESSION_TTL: %w", err)
		}
		cfg.Auth.SessionTTL = d
	}
	if v, ok := get("AUDIT_DIR"); ok {
		cfg.Auth.AuditDir = v
	}
	if v, ok := get("RECENT_WINDOW"); ok {
		d, err := ParseDuration(v)
		if err != nil {
			return envUsed, fmt.Errorf("COCREATE_RECENT_WINDOW: %w", err)
		}
		cfg.Projects.RecentWindow = d
	}
	if v, ok := get("SEED_DEMO"); ok {
		cfg.Seed.Demo = parseBool(v)
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := get("RETENTION_ENABLED"); ok {
		cfg.Retention.Enabled = parseBool(v)
	}
	if v, ok := get("RETENTION_CRON"); ok {
		cfg.Retention.Cron = v
	}
	return envUsed, nil
}

// LoadEffectiveConfig layers the config file, environment and explicit
// flags (in that order of increasing precedence) and applies defaults.
func LoadEffectiveConfig(flags Flags, fileCfg *Config, fileExists bool) (EffectiveConfigResult, error) {
	var res EffectiveConfigResult

	if flags.Set["config"] && !fileExists {
		return res, fmt.Errorf("config file %s not found", flags.Config)
	}
	cfg := &Config{}
	var sources []string
	if fileExists && fileCfg != nil {
		*cfg = *fileCfg
		sources = append(sources, "config")
	}
	envUsed, err := ApplyEnv(cfg)
	if err != nil {
		return res, err
	}
	if envUsed {
		sources = append(sources, "env")
	}

	flagsUsed := false
	if flags.Set["addr"] {
		flagsUsed = true
		host, _, err := net.SplitHostPort(flags.Addr)
		if err != nil {
			return res, fmt.Errorf("invalid --addr %q: %w", flags.Addr, err)
		}
		cfg.Server.Address = host
		cfg.Server.Port = parsePortFromAddr(flags.Addr)
	}
	if flags.Set["db"] || cfg.Server.DBPath == "" {
		flagsUsed = flagsUsed || flags.Set["db"]
		cfg.Server.DBPath = flags.DB
	}
	if flags.Set["engine"] {
		flagsUsed = true
		cfg.Server.Engine = flags.Engine
	}
	if flagsUsed {
		sources = append(sources, "flags")
	}
	if len(sources) == 0 {
		sources = append(sources, "defaults")
	}

	cfg.ApplyDefaults()
	res.Config = cfg
	res.Addr = cfg.Addr()
	res.DBPath = cfg.Server.DBPath
	res.Source = strings.Join(sources, ", ")
	return res, nil
}

// parsePortFromAddr extracts port integer from host:port string.
func parsePortFromAddr(a string) int {
	if a == "" {
		return 0
	}
	if _, p, err := net.SplitHostPort(a); err == nil {
		if pi, err := strconv.Atoi(p); err == nil {
			return pi
		}
	}
	return 0
}
