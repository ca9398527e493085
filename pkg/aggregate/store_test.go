package aggregate

import (
	"context"
	"sort"
	"sync"
	"testing"

	"boardd/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), NewStream(1024))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAbsentCounterReadsZero(t *testing.T) {
	s := newTestStore(t)
	n, err := s.ReactionCount(context.Background(), "t1", "p1", "like")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}
}

func TestConcurrentIncrementsLoseNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	const n = 100

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.IncrementReaction(ctx, "t1", "p1", "like"); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := s.ReactionCount(ctx, "t1", "p1", "like")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != n {
		t.Fatalf("count = %d, want %d", got, n)
	}
}

func TestPostReactionsListsAllKinds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, kind := range []string{"like", "like", "laugh", "sad"} {
		if _, err := s.IncrementReaction(ctx, "t1", "p1", kind); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	// a different post must not bleed in
	if _, err := s.IncrementReaction(ctx, "t1", "p2", "like"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	got, err := s.PostReactions(ctx, "t1", "p1")
	if err != nil {
		t.Fatalf("post reactions: %v", err)
	}
	counts := map[string]int64{}
	for _, rc := range got {
		counts[rc.Kind] = rc.Count
	}
	want := map[string]int64{"like": 2, "laugh": 1, "sad": 1}
	if len(counts) != len(want) {
		t.Fatalf("kinds = %v, want %v", counts, want)
	}
	for k, v := range want {
		if counts[k] != v {
			t.Fatalf("counts[%s] = %d, want %d", k, counts[k], v)
		}
	}
}

func TestRecordActivityUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.RecordActivity(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first.Count != 1 || first.FirstSeenTS == 0 {
		t.Fatalf("first entry = %+v", first)
	}

	second, err := s.RecordActivity(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if second.Count != 2 {
		t.Fatalf("count = %d, want 2", second.Count)
	}
	if second.FirstSeenTS != first.FirstSeenTS {
		t.Fatalf("first_seen changed: %d -> %d", first.FirstSeenTS, second.FirstSeenTS)
	}
	if second.LastSeenTS < first.LastSeenTS {
		t.Fatalf("last_seen went backwards")
	}
}

func TestUserActivityScopedToUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.RecordActivity(ctx, "u1", "t1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := s.RecordActivity(ctx, "u1", "t2"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := s.RecordActivity(ctx, "u2", "t1"); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := s.UserActivity(ctx, "u1")
	if err != nil {
		t.Fatalf("user activity: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.UserID != "u1" {
			t.Fatalf("entry for wrong user: %+v", e)
		}
	}
}

func TestDeleteThreadAggregates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.IncrementReaction(ctx, "t1", "p1", "like"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := s.IncrementReaction(ctx, "t1", "p2", "sad"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := s.RecordActivity(ctx, "u1", "t1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := s.IncrementReaction(ctx, "t2", "p3", "like"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := s.RecordActivity(ctx, "u1", "t2"); err != nil {
		t.Fatalf("record: %v", err)
	}

	deleted, err := s.DeleteThreadAggregates(ctx, "t1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("deleted = %d, want 3", deleted)
	}

	if n, _ := s.ReactionCount(ctx, "t1", "p1", "like"); n != 0 {
		t.Fatalf("t1 counter survived: %d", n)
	}
	if n, _ := s.ReactionCount(ctx, "t2", "p3", "like"); n != 1 {
		t.Fatalf("t2 counter lost: %d", n)
	}

	ids, err := s.ThreadIDs(ctx)
	if err != nil {
		t.Fatalf("thread ids: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 1 || ids[0] != "t2" {
		t.Fatalf("ids = %v, want [t2]", ids)
	}
}

func TestIncrementPublishesEvent(t *testing.T) {
	stream := NewStream(8)
	s, err := Open(t.TempDir(), stream)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ch, cancel := stream.Subscribe()
	defer cancel()

	if _, err := s.IncrementReaction(context.Background(), "t1", "p1", "like"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	ev := <-ch
	if ev.Kind != models.ChangeReaction || ev.ThreadID != "t1" || ev.Count != 1 {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Seq == 0 {
		t.Fatalf("seq not assigned")
	}
}
