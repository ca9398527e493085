// Package app wires configuration, stores, the lifecycle manager, the
// reconciler and the HTTP surface into one runnable server.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"

	"boardd/internal/reconcile"
	"boardd/pkg/aggregate"
	"boardd/pkg/api"
	"boardd/pkg/archive"
	"boardd/pkg/banner"
	"boardd/pkg/config"
	"boardd/pkg/content"
	"boardd/pkg/httpx"
	"boardd/pkg/lifecycle"
	"boardd/pkg/logger"
	"boardd/pkg/state"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff     config.EffectiveConfigResult
	version string

	content *content.Store
	agg     *aggregate.Store
	manager *lifecycle.Manager
	sweeper *reconcile.Sweeper
}

// New initializes resources that do not require a running context: the
// data dir layout and both stores. Call Run to start the scheduler and
// the HTTP server and block until shutdown.
func New(eff config.EffectiveConfigResult, version string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	paths, err := state.Init(eff.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init data dir %s: %w", eff.DataDir, err)
	}

	cs, err := content.Open(eff.Config.Content.Driver, eff.Config.Content.DSN)
	if err != nil {
		return nil, err
	}
	if err := cs.Migrate(context.Background()); err != nil {
		_ = cs.Close()
		return nil, err
	}

	aggPath := eff.Config.Aggregate.DBPath
	if aggPath == "" {
		aggPath = paths.Aggregate
	}
	stream := aggregate.NewStream(eff.Config.Stream.SubscriberBuffer)
	as, err := aggregate.Open(aggPath, stream)
	if err != nil {
		_ = cs.Close()
		return nil, err
	}

	archiveDir := eff.Config.Archive.Dir
	if archiveDir == "" {
		archiveDir = paths.Archive
	}
	exp := archive.New(filepath.Clean(archiveDir), int64(eff.Config.Archive.MaxSnapshotSize))

	a := &App{
		eff:     eff,
		version: version,
		content: cs,
		agg:     as,
		manager: lifecycle.New(cs, as, stream, exp),
		sweeper: reconcile.New(cs, as, eff.Config.Reconcile),
	}
	return a, nil
}

// Run starts the reconciler and the HTTP server and blocks until ctx is
// cancelled or the server fails. Stores are closed on all exit paths.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	stopReconcile, err := reconcile.Start(ctx, a.sweeper)
	if err != nil {
		return err
	}
	defer stopReconcile()

	banner.Print(a.eff, a.version)

	err = httpx.Serve(ctx, httpx.Options{
		Engine:   a.eff.Config.Server.Engine,
		Addr:     a.eff.Addr,
		CertFile: a.eff.Config.Server.TLS.CertFile,
		KeyFile:  a.eff.Config.Server.TLS.KeyFile,
	}, api.Handler(a.manager))
	if err != nil {
		logger.Error("http_server_failed", "err", err)
	}
	return err
}

// close drains background writes and shuts both stores.
func (a *App) close() {
	a.manager.Drain()
	if err := a.agg.Close(); err != nil {
		logger.Error("aggregate_close_failed", "err", err)
	}
	if err := a.content.Close(); err != nil {
		logger.Error("content_close_failed", "err", err)
	}
	logger.Info("server_stopped")
}
