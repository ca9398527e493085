package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	Data   string
	Config string
	Set    map[string]bool
}

// EffectiveConfigResult holds the resolved config and where it came from.
type EffectiveConfigResult struct {
	Config  *Config
	Addr    string
	DataDir string
	Source  string // "flags", "config", or "env"
}

// ParseConfigFlags parses command-line flags and returns them as a Flags struct.
func ParseConfigFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dataPtr := flag.String("data", "./.boardd", "Data directory")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Addr: *addrPtr, Data: *dataPtr, Config: *cfgPtr, Set: setFlags}
}

// ParseConfigFile resolves the config path and loads the YAML file. It
// returns the parsed config, whether the file was present, and an error
// for fatal parsing problems.
func ParseConfigFile(flags Flags) (*Config, bool, error) {
	cfgPath := ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, err := Load(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, false, nil
		}
		return nil, false, err
	}
	return cfg, true, nil
}

// LoadEffectiveConfig decides which single source to use. An explicit
// --config requires the file to exist and uses it exclusively; explicit
// --addr/--data use flags; otherwise a present config file wins, with env
// as the final fallback.
func LoadEffectiveConfig(flags Flags, fileCfg *Config, fileExists bool, envCfg *Config) (EffectiveConfigResult, error) {
	var res EffectiveConfigResult

	if flags.Set["config"] {
		if !fileExists {
			return res, fmt.Errorf("config file %s not found", flags.Config)
		}
		res.Config = fileCfg
		res.Addr = fileCfg.Addr()
		res.DataDir = dataDirOf(fileCfg)
		res.Source = "config"
		return res, nil
	}

	if flags.Set["addr"] || flags.Set["data"] {
		addr := flags.Addr
		if !flags.Set["addr"] {
			addr = envCfg.Addr()
			if addr == "" {
				addr = fileCfg.Addr()
			}
		}
		dataDir := flags.Data
		if !flags.Set["data"] {
			if p := strings.TrimSpace(dataDirOf(envCfg)); p != "" {
				dataDir = p
			} else if p := strings.TrimSpace(dataDirOf(fileCfg)); p != "" {
				dataDir = p
			}
		}
		out := &Config{}
		out.Server.Address = addr
		out.Server.Port = parsePortFromAddr(addr)
		out.Aggregate.DBPath = envCfg.Aggregate.DBPath
		out.Content = envCfg.Content
		res.Config = out
		res.Addr = addr
		res.DataDir = dataDir
		res.Source = "flags"
		return res, nil
	}

	if fileExists {
		res.Config = fileCfg
		res.Addr = fileCfg.Addr()
		res.DataDir = dataDirOf(fileCfg)
		res.Source = "config"
		return res, nil
	}
	res.Config = envCfg
	res.Addr = envCfg.Addr()
	res.DataDir = dataDirOf(envCfg)
	res.Source = "env"
	return res, nil
}

// dataDirOf derives the data directory from the aggregate db path when no
// explicit directory is configured.
func dataDirOf(cfg *Config) string {
	if cfg == nil {
		return ""
	}
	if p := os.Getenv("BOARDD_DATA_DIR"); p != "" {
		return p
	}
	if cfg.Aggregate.DBPath != "" {
		// <data>/aggregate is the conventional layout.
		if strings.HasSuffix(cfg.Aggregate.DBPath, "/aggregate") {
			return strings.TrimSuffix(cfg.Aggregate.DBPath, "/aggregate")
		}
	}
	return ""
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
