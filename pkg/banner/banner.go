package banner

import (
	"fmt"
	"io"
	"os"

	"cocreate/pkg/config"
)

const banner = `
  ____       ____                _
 / ___|___  / ___|_ __ ___  __ _| |_ ___
| |   / _ \| |   | '__/ _ \/ _' | __/ _ \
| |__| (_) | |___| | |  __/ (_| | ||  __/
 \____\___/ \____|_|  \___|\__,_|\__\___|
`

// PrintWithEff prints the startup banner to stdout.
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	Fprint(os.Stdout, eff, version)
}

// Fprint writes the banner, effective settings and a production checklist.
func Fprint(w io.Writer, eff config.EffectiveConfigResult, version string) {
	cfg := eff.Config
	if cfg == nil {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}
	addr := eff.Addr
	if addr == "" {
		addr = cfg.Addr()
	}
	src := eff.Source
	if src == "" {
		src = "defaults"
	}

	fmt.Fprint(w, banner)
	fmt.Fprintln(w, "== Config =====================================================")
	fmt.Fprintf(w, "Listen:   %s (%s)\n", addr, cfg.Server.Engine)
	fmt.Fprintf(w, "DB Path:  %s\n", eff.DBPath)
	if version != "" {
		fmt.Fprintf(w, "Version:  %s\n", version)
	}
	fmt.Fprintf(w, "Config:   %s\n", src)
	fmt.Fprintf(w, "Max body: %s\n", cfg.Server.MaxBody)

	fmt.Fprintln(w, "\n== Examples ===================================================")
	fmt.Fprintln(w, "curl -X POST 'http://<host>:<port>/api/v1/auth/login?username=Owl&password=password'")
	fmt.Fprintln(w, "curl -H 'Authorization: Bearer <token>' 'http://<host>:<port>/api/v1/projects/recent'")

	fmt.Fprintln(w, "\n== Production? =================================================")
	if cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "" {
		fmt.Fprintln(w, "- TLS: configured")
	} else {
		fmt.Fprintln(w, "- TLS: unconfigured")
	}
	if n := len(cfg.Security.CORS.AllowedOrigins); n > 0 {
		fmt.Fprintf(w, "- CORS origins: %d\n", n)
	} else {
		fmt.Fprintln(w, "- CORS origins: none (browser clients blocked)")
	}
	if cfg.Seed.Demo {
		fmt.Fprintln(w, "- Demo data: ENABLED (disable with seed.demo=false)")
	} else {
		fmt.Fprintln(w, "- Demo data: disabled")
	}
	fmt.Fprintf(w, "- Session TTL: %s\n", cfg.Auth.SessionTTL.Duration())
	if cfg.Retention.Enabled {
		fmt.Fprintf(w, "- Session sweeper: enabled (cron=%s)\n", cfg.Retention.Cron)
	} else {
		fmt.Fprintln(w, "- Session sweeper: disabled")
	}

	fmt.Fprintln(w, "\n== Logs: =================================================")
}
