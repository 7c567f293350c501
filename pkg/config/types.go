package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Security  SecurityConfig  `yaml:"security"`
	Auth      AuthConfig      `yaml:"auth"`
	Projects  ProjectsConfig  `yaml:"projects"`
	Messages  MessagesConfig  `yaml:"messages"`
	Seed      SeedConfig      `yaml:"seed"`
	Logging   LoggingConfig   `yaml:"logging"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServerConfig holds http and tls settings.
type ServerConfig struct {
	Address string    `yaml:"address"`
	Port    int       `yaml:"port"`
	DBPath  string    `yaml:"db_path"`
	Engine  string    `yaml:"engine"` // nethttp|fasthttp
	MaxBody SizeBytes `yaml:"max_body"`
	Docs    string    `yaml:"docs_dir"`
	TLS     TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate configuration.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// SecurityConfig holds security related settings.
type SecurityConfig struct {
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	IPWhitelist []string `yaml:"ip_whitelist"`
}

// AuthConfig controls sessions and password hashing.
type AuthConfig struct {
	SessionTTL Duration `yaml:"session_ttl"`
	BcryptCost int      `yaml:"bcrypt_cost"`
	AuditDir   string   `yaml:"audit_dir"`
}

// ProjectsConfig controls project listings.
type ProjectsConfig struct {
	RecentWindow Duration `yaml:"recent_window"`
	DefaultLimit int      `yaml:"default_limit"`
}

// MessagesConfig controls message validation.
type MessagesConfig struct {
	MaxLen int `yaml:"max_len"`
}

// SeedConfig controls the data written into an empty database.
type SeedConfig struct {
	Demo bool `yaml:"demo"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text|json
	Sink   string `yaml:"sink"`
}

// RetentionConfig holds configuration for the expired-session sweeper.
type RetentionConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
	DryRun  bool   `yaml:"dry_run"`
}

// Defaults applied by ApplyDefaults.
const (
	DefaultPort          = 8000
	DefaultSessionTTL    = 24 * time.Hour
	DefaultRecentWindow  = 24 * time.Hour
	DefaultProjectLimit  = 5
	DefaultMaxMessageLen = 2000
	DefaultRetentionCron = "*/15 * * * *"
	DefaultMaxBody       = SizeBytes(1 << 20)
)

// ApplyDefaults fills zero values with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Engine == "" {
		c.Server.Engine = "nethttp"
	}
	if c.Server.MaxBody <= 0 {
		c.Server.MaxBody = DefaultMaxBody
	}
	if c.Server.Docs == "" {
		c.Server.Docs = "./docs"
	}
	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = Duration(DefaultSessionTTL)
	}
	if c.Projects.RecentWindow <= 0 {
		c.Projects.RecentWindow = Duration(DefaultRecentWindow)
	}
	if c.Projects.DefaultLimit <= 0 {
		c.Projects.DefaultLimit = DefaultProjectLimit
	}
	if c.Messages.MaxLen <= 0 {
		c.Messages.MaxLen = DefaultMaxMessageLen
	}
	if c.Retention.Cron == "" {
		c.Retention.Cron = DefaultRetentionCron
	}
}

// Addr returns host:port for HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = DefaultPort
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// SizeBytes represents a number of bytes, unmarshaled from human-friendly strings like "64MB" or plain integers.
type SizeBytes int64

func (s *SizeBytes) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*s = 0
		return nil
	}
	v, err := ParseSize(node.Value)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSize parses "512KB", "1 MiB" or a plain byte count.
func ParseSize(raw string) (SizeBytes, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return SizeBytes(i), nil
	}
	if v, err := humanize.ParseBytes(raw); err == nil {
		return SizeBytes(v), nil
	}
	return 0, fmt.Errorf("invalid size value: %q", raw)
}

func (s SizeBytes) Int64() int64 { return int64(s) }

func (s SizeBytes) String() string { return humanize.IBytes(uint64(s)) }

// Duration is a wrapper around time.Duration that supports YAML parsing from strings like "100ms" or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	v, err := ParseDuration(node.Value)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDuration parses "90m", "24h" or plain seconds.
func ParseDuration(raw string) (Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		return Duration(td), nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Duration(time.Duration(f * float64(time.Second))), nil
	}
	return 0, fmt.Errorf("invalid duration value: %q", raw)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
