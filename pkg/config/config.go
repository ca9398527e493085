package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and parses the YAML config at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ParseConfigEnvs reads environment variables into a fresh Config and
// reports whether any were set. It does not mutate caller state.
func ParseConfigEnvs() (*Config, bool) {
	envCfg := &Config{}
	envUsed := false

	if v := os.Getenv("BOARDD_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			envCfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				envCfg.Server.Port = pi
			}
		} else {
			envCfg.Server.Address = v
		}
	} else {
		if host := os.Getenv("BOARDD_SERVER_ADDRESS"); host != "" {
			envUsed = true
			envCfg.Server.Address = host
		}
		if port := os.Getenv("BOARDD_SERVER_PORT"); port != "" {
			envUsed = true
			if pi, err := strconv.Atoi(port); err == nil {
				envCfg.Server.Port = pi
			}
		}
	}

	if v := os.Getenv("BOARDD_SERVER_ENGINE"); v != "" {
		envUsed = true
		envCfg.Server.Engine = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("BOARDD_CONTENT_DRIVER"); v != "" {
		envUsed = true
		envCfg.Content.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("BOARDD_CONTENT_DSN"); v != "" {
		envUsed = true
		envCfg.Content.DSN = v
	}
	if v := os.Getenv("BOARDD_AGGREGATE_DB_PATH"); v != "" {
		envUsed = true
		envCfg.Aggregate.DBPath = v
	}
	if v := os.Getenv("BOARDD_ARCHIVE_DIR"); v != "" {
		envUsed = true
		envCfg.Archive.Dir = v
	}
	if v := os.Getenv("BOARDD_STREAM_BUFFER"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			envCfg.Stream.SubscriberBuffer = n
		}
	}
	if v := os.Getenv("BOARDD_RECONCILE_ENABLED"); v != "" {
		envUsed = true
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes":
			envCfg.Reconcile.Enabled = true
		default:
			envCfg.Reconcile.Enabled = false
		}
	}
	if v := os.Getenv("BOARDD_RECONCILE_CRON"); v != "" {
		envUsed = true
		envCfg.Reconcile.Cron = v
	}
	if v := os.Getenv("BOARDD_LOG_LEVEL"); v != "" {
		envUsed = true
		envCfg.Logging.Level = v
	}
	if c := os.Getenv("BOARDD_TLS_CERT"); c != "" {
		envUsed = true
		envCfg.Server.TLS.CertFile = c
	}
	if k := os.Getenv("BOARDD_TLS_KEY"); k != "" {
		envUsed = true
		envCfg.Server.TLS.KeyFile = k
	}

	return envCfg, envUsed
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and the BOARDD_CONFIG environment variable when the flag was not
// explicitly set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("BOARDD_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
