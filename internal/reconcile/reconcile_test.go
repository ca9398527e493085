package reconcile

import (
	"context"
	"path/filepath"
	"testing"

	"boardd/pkg/aggregate"
	"boardd/pkg/config"
	"boardd/pkg/content"
	"boardd/pkg/models"
)

func newStores(t *testing.T) (*content.Store, *aggregate.Store) {
	t.Helper()
	dir := t.TempDir()
	cs, err := content.Open("sqlite", "file:"+filepath.Join(dir, "board.db")+"?_fk=1")
	if err != nil {
		t.Fatalf("open content: %v", err)
	}
	if err := cs.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	as, err := aggregate.Open(filepath.Join(dir, "aggregate"), aggregate.NewStream(64))
	if err != nil {
		t.Fatalf("open aggregate: %v", err)
	}
	t.Cleanup(func() {
		_ = as.Close()
		_ = cs.Close()
	})
	return cs, as
}

func TestRunOnceRemovesOrphans(t *testing.T) {
	cs, as := newStores(t)
	ctx := context.Background()

	live := &models.Thread{ThreadID: "live", ThreadName: "kept", GenreTag: "general"}
	if err := cs.CreateThread(ctx, live); err != nil {
		t.Fatalf("create thread: %v", err)
	}
	if _, err := as.IncrementReaction(ctx, "live", "p1", "like"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	// orphaned rows for a thread that never reached the content store
	if _, err := as.IncrementReaction(ctx, "ghost", "p2", "like"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := as.RecordActivity(ctx, "u1", "ghost"); err != nil {
		t.Fatalf("record: %v", err)
	}

	s := New(cs, as, config.ReconcileConfig{Enabled: true})
	removed, err := s.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	if n, _ := as.ReactionCount(ctx, "live", "p1", "like"); n != 1 {
		t.Fatalf("live counter lost: %d", n)
	}
	if n, _ := as.ReactionCount(ctx, "ghost", "p2", "like"); n != 0 {
		t.Fatalf("ghost counter survived: %d", n)
	}
}

func TestRunOnceDryRun(t *testing.T) {
	cs, as := newStores(t)
	ctx := context.Background()
	if _, err := as.IncrementReaction(ctx, "ghost", "p1", "like"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	s := New(cs, as, config.ReconcileConfig{Enabled: true, DryRun: true})
	removed, err := s.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if removed != 0 {
		t.Fatalf("dry run removed %d keys", removed)
	}
	if n, _ := as.ReactionCount(ctx, "ghost", "p1", "like"); n != 1 {
		t.Fatalf("dry run deleted data")
	}
}

func TestStartRejectsBadCron(t *testing.T) {
	cs, as := newStores(t)
	s := New(cs, as, config.ReconcileConfig{Enabled: true, Cron: "not a cron"})
	if _, err := Start(context.Background(), s); err == nil {
		t.Fatalf("expected error for invalid cron")
	}
}

func TestStartDisabledIsNoop(t *testing.T) {
	cs, as := newStores(t)
	s := New(cs, as, config.ReconcileConfig{Enabled: false})
	cancel, err := Start(context.Background(), s)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()
}
