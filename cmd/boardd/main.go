package main

import (
	"context"
	"log"
	"os"

	"boardd/internal/app"
	"boardd/pkg/config"
	"boardd/pkg/logger"
	"boardd/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var version = "dev"

func main() {
	flags := config.ParseConfigFlags()
	fileCfg, fileExists, err := config.ParseConfigFile(flags)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	envCfg, _ := config.ParseConfigEnvs()

	eff, err := config.LoadEffectiveConfig(flags, fileCfg, fileExists, envCfg)
	if err != nil {
		log.Fatalf("failed to resolve config: %v", err)
	}
	if eff.DataDir == "" {
		eff.DataDir = flags.Data
	}

	logger.InitWithLevel(eff.Config.Logging.Level)

	a, err := app.New(eff, version)
	if err != nil {
		logger.Error("startup_failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := shutdown.Context(context.Background())
	defer stop()
	if err := a.Run(ctx); err != nil {
		os.Exit(1)
	}
}
