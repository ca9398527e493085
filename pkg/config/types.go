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
	Content   ContentConfig   `yaml:"content"`
	Aggregate AggregateConfig `yaml:"aggregate"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Stream    StreamConfig    `yaml:"stream"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds http listener settings. Engine selects the serving
// stack: "nethttp" (default) or "fasthttp".
type ServerConfig struct {
	Address string    `yaml:"address"`
	Port    int       `yaml:"port"`
	Engine  string    `yaml:"engine"`
	TLS     TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate configuration.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// ContentConfig configures the relational content store.
// Driver is "postgres" or "sqlite".
type ContentConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// AggregateConfig configures the embedded aggregate (pebble) store. When
// DBPath is empty the path is derived from the data dir layout.
type AggregateConfig struct {
	DBPath string `yaml:"db_path"`
}

// ArchiveConfig configures thread snapshot export.
type ArchiveConfig struct {
	Dir             string    `yaml:"dir"`
	MaxSnapshotSize SizeBytes `yaml:"max_snapshot_size"`
}

// StreamConfig tunes the change propagation stream.
type StreamConfig struct {
	SubscriberBuffer int `yaml:"subscriber_buffer"`
}

// ReconcileConfig holds configuration for the orphaned-aggregate sweeper.
type ReconcileConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Cron      string   `yaml:"cron"`
	BatchSize int      `yaml:"batch_size"`
	Sleep     Duration `yaml:"batch_sleep"`
	DryRun    bool     `yaml:"dry_run"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	host := c.Server.Address
	port := c.Server.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Duration unmarshals either a Go duration string ("250ms", "2s") or a
// bare integer interpreted as milliseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(n) * time.Millisecond)
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// SizeBytes unmarshals humanized sizes ("64MB", "1 GiB") or bare byte counts.
type SizeBytes int64

func (s *SizeBytes) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*s = 0
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*s = SizeBytes(n)
		return nil
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", raw, err)
	}
	*s = SizeBytes(n)
	return nil
}
