package clientconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultAPIURL is used when neither the file nor COCREATE_API_URL set one.
const DefaultAPIURL = "http://localhost:8000"

// Config is the CLI configuration stored at ~/.cocreate.yaml.
type Config struct {
	APIURL           string `yaml:"api_url" json:"api_url"`
	StatePath        string `yaml:"state_path" json:"state_path"`
	Offline          bool   `yaml:"offline" json:"offline"`
	FallbackData     bool   `yaml:"fallback_data" json:"fallback_data"`
	DemoConversation bool   `yaml:"demo_conversation" json:"demo_conversation"`
	Dev              bool   `yaml:"dev" json:"dev"`
	LogFile          string `yaml:"log_file" json:"log_file"`
	LogLevel         string `yaml:"log_level" json:"log_level"`
}

// DefaultPath returns ~/.cocreate.yaml, or ./.cocreate.yaml without a home.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cocreate.yaml"
	}
	return filepath.Join(home, ".cocreate.yaml")
}

// LoadFromFile reads path. A missing file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToFile writes cfg as YAML, readable only by its owner.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("COCREATE_API_URL")); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("COCREATE_STATE_PATH")); v != "" {
		c.StatePath = v
	}
	if v := strings.TrimSpace(os.Getenv("COCREATE_OFFLINE")); v != "" {
		c.Offline = v == "1" || strings.EqualFold(v, "true")
	}
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.StatePath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.StatePath = filepath.Join(dir, "cocreate", "state.yaml")
		} else {
			c.StatePath = ".cocreate-state.yaml"
		}
	}
	if c.LogFile == "" {
		c.LogFile = "discard"
	}
}

// Validate checks the API URL is absolute http(s).
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an absolute http(s) URL, got %q", c.APIURL)
	}
	return nil
}

// LogSink maps log_file onto a logger sink name.
func (c *Config) LogSink() string {
	switch c.LogFile {
	case "", "discard", "stdout", "stderr":
		return c.LogFile
	}
	return "file:" + c.LogFile
}
