package app

import (
	"fmt"
	"os"

	"github.com/adhocore/gronx"

	"boardd/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	if eff.DataDir == "" {
		return fmt.Errorf("data directory is empty: set --data flag, BOARDD_DATA_DIR env, or aggregate.db_path in config")
	}

	switch eff.Config.Content.Driver {
	case "postgres", "sqlite":
	case "":
		return fmt.Errorf("content driver is empty: set content.driver (postgres|sqlite) or BOARDD_CONTENT_DRIVER")
	default:
		return fmt.Errorf("unsupported content driver %q: want postgres or sqlite", eff.Config.Content.Driver)
	}
	if eff.Config.Content.DSN == "" {
		return fmt.Errorf("content dsn is empty: set content.dsn or BOARDD_CONTENT_DSN")
	}

	switch eff.Config.Server.Engine {
	case "", "nethttp", "fasthttp":
	default:
		return fmt.Errorf("unsupported http engine %q: want nethttp or fasthttp", eff.Config.Server.Engine)
	}

	if c := eff.Config.Reconcile.Cron; c != "" && !gronx.IsValid(c) {
		return fmt.Errorf("invalid reconcile cron expression: %s", c)
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

	return nil
}
