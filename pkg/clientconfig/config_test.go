package clientconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile_MissingUsesDefaults(t *testing.T) {
	t.Setenv("COCREATE_API_URL", "")
	t.Setenv("COCREATE_STATE_PATH", "")
	t.Setenv("COCREATE_OFFLINE", "")
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("expected default api url, got %q", cfg.APIURL)
	}
	if cfg.StatePath == "" || cfg.LogSink() != "discard" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFromFile_EnvWins(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	cfg := &Config{APIURL: "http://file:9000", FallbackData: true, LogFile: filepath.Join(dir, "cli.log")}
	if err := SaveToFile(cfg, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	fi, _ := os.Stat(p)
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %o", fi.Mode().Perm())
	}

	t.Setenv("COCREATE_API_URL", "https://api.example.com")
	t.Setenv("COCREATE_OFFLINE", "true")
	got, err := LoadFromFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.APIURL != "https://api.example.com" || !got.Offline || !got.FallbackData {
		t.Fatalf("unexpected config: %+v", got)
	}
	if got.LogSink() != "file:"+filepath.Join(dir, "cli.log") {
		t.Fatalf("unexpected sink %q", got.LogSink())
	}
}

func TestValidate(t *testing.T) {
	for _, bad := range []string{"localhost:8000", "ftp://x", "http://"} {
		if err := (&Config{APIURL: bad}).Validate(); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
