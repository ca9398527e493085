// Package reconcile sweeps aggregate rows whose thread no longer exists
// in the content store. Aggregate data is advisory, so the sweep is
// best-effort: it logs failures and tries again on the next tick, and it
// never writes to the content store.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"boardd/pkg/aggregate"
	"boardd/pkg/boarderr"
	"boardd/pkg/config"
	"boardd/pkg/content"
	"boardd/pkg/logger"
	"boardd/pkg/telemetry"
)

// DefaultCron runs the sweep nightly at 03:00.
const DefaultCron = "0 3 * * *"

// Sweeper deletes orphaned aggregate rows.
type Sweeper struct {
	content *content.Store
	agg     *aggregate.Store
	cfg     config.ReconcileConfig
}

// New builds a sweeper over the two stores.
func New(cs *content.Store, as *aggregate.Store, cfg config.ReconcileConfig) *Sweeper {
	return &Sweeper{content: cs, agg: as, cfg: cfg}
}

// Start launches the cron scheduler if reconciliation is enabled.
// Returns a cancel func that stops the scheduler.
func Start(ctx context.Context, s *Sweeper) (context.CancelFunc, error) {
	if !s.cfg.Enabled {
		logger.Info("reconcile_disabled")
		return func() {}, nil
	}

	cronExpr := s.cfg.Cron
	if cronExpr == "" {
		cronExpr = DefaultCron
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid reconcile cron expression: %s", s.cfg.Cron)
	}

	ctx2, cancel := context.WithCancel(ctx)
	go s.runScheduler(ctx2, cronExpr)
	logger.Info("reconcile_scheduler_started", "cron", cronExpr)
	return cancel, nil
}

// runScheduler sleeps until the next cron tick and runs a sweep, until
// the context is cancelled.
func (s *Sweeper) runScheduler(ctx context.Context, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("reconcile_scheduler_stopping")
			return
		default:
		}

		next, err := gronx.NextTickAfter(cronExpr, time.Now().UTC(), false)
		if err != nil {
			logger.Error("reconcile_nexttick_failed", "cron", cronExpr, "err", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if _, err := s.RunOnce(ctx); err != nil {
				logger.Error("reconcile_run_error", "err", err)
			}
		case <-ctx.Done():
			logger.Info("reconcile_scheduler_stopping")
			return
		}
	}
}

// RunOnce performs a single sweep and returns the number of aggregate
// keys removed.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	ids, err := s.agg.ThreadIDs(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return removed, ctx.Err()
		default:
		}

		_, err := s.content.GetThread(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, boarderr.ErrNotFound) {
			// store trouble: skip this id, next sweep retries
			logger.Warn("reconcile_lookup_failed", "thread_id", id, "err", err)
			continue
		}

		if s.cfg.DryRun {
			logger.Info("reconcile_would_delete", "thread_id", id)
			continue
		}
		n, err := s.agg.DeleteThreadAggregates(ctx, id)
		if err != nil {
			logger.Warn("reconcile_delete_failed", "thread_id", id, "err", err)
			continue
		}
		removed += n
		telemetry.ReconcileDeleted.Add(float64(n))

		if s.cfg.Sleep > 0 {
			select {
			case <-time.After(s.cfg.Sleep.Std()):
			case <-ctx.Done():
				return removed, ctx.Err()
			}
		}
	}

	telemetry.ReconcileSweeps.Inc()
	logger.Info("reconcile_sweep_done",
		"threads_seen", len(ids),
		"keys_removed", removed,
		"took", time.Since(start).String())
	return removed, nil
}
