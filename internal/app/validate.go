package app

import (
	"fmt"
	"os"

	"github.com/adhocore/gronx"

	"cocreate/pkg/config"
	"cocreate/pkg/httpx"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before any resources are opened.
func validateConfig(eff config.EffectiveConfigResult) error {
	if eff.Config == nil {
		return fmt.Errorf("no effective configuration")
	}
	if eff.DBPath == "" {
		return fmt.Errorf("database path is empty: set --db flag, COCREATE_DB_PATH env, or server.db_path in config")
	}

	switch eff.Config.Server.Engine {
	case httpx.EngineNetHTTP, httpx.EngineFastHTTP:
	default:
		return fmt.Errorf("unknown server.engine %q: want %s or %s", eff.Config.Server.Engine, httpx.EngineNetHTTP, httpx.EngineFastHTTP)
	}

	cert := eff.Config.Server.TLS.CertFile
	key := eff.Config.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	if eff.Config.Retention.Enabled && !gronx.IsValid(eff.Config.Retention.Cron) {
		return fmt.Errorf("invalid retention.cron %q", eff.Config.Retention.Cron)
	}
	if c := eff.Config.Auth.BcryptCost; c != 0 && (c < 4 || c > 31) {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", c)
	}
	if eff.Config.Security.RateLimit.RPS < 0 || eff.Config.Security.RateLimit.Burst < 0 {
		return fmt.Errorf("security.rate_limit values must not be negative")
	}
	return nil
}
