// Package aggregate is the embedded counter and activity store. It holds
// advisory data derived from content writes: reaction tallies and per-user
// activity rollups, with a change stream over every mutation.
//
// Keyspaces:
//
//	reaction:<thread_id>:<post_id>:<kind> -> 8-byte big-endian count
//	activity:<user_id>:<thread_id>        -> JSON ActivityEntry
package aggregate

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"boardd/pkg/boarderr"
	"boardd/pkg/logger"
	"boardd/pkg/models"
	"boardd/pkg/telemetry"
)

const (
	reactionPrefix = "reaction:"
	activityPrefix = "activity:"
)

// Counter increments go through pebble's merge operator, so concurrent
// adds never read-modify-write and never lose updates.
type counterMerger struct {
	sum int64
}

func (m *counterMerger) MergeNewer(value []byte) error {
	m.sum += decodeCount(value)
	return nil
}

func (m *counterMerger) MergeOlder(value []byte) error {
	m.sum += decodeCount(value)
	return nil
}

func (m *counterMerger) Finish(includesBase bool) ([]byte, io.Closer, error) {
	return encodeCount(m.sum), nil, nil
}

var counterMergerDef = &pebble.Merger{
	Name: "boardd.counter",
	Merge: func(key, value []byte) (pebble.ValueMerger, error) {
		return &counterMerger{sum: decodeCount(value)}, nil
	},
}

func encodeCount(n int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	return b[:]
}

func decodeCount(b []byte) int64 {
	if len(b) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// Store wraps the pebble handle and the change stream.
type Store struct {
	db     *pebble.DB
	stream *Stream

	// serializes activity read-modify-write; counters do not need it
	activityMu sync.Mutex
}

// Open opens (or creates) the aggregate database at path. All events the
// store emits flow through stream.
func Open(path string, stream *Stream) (*Store, error) {
	logger.Info("opening_aggregate_db", "path", path)
	db, err := pebble.Open(path, &pebble.Options{Merger: counterMergerDef})
	if err != nil {
		logger.Error("aggregate_open_failed", "path", path, "err", err)
		return nil, boarderr.Unavailable("aggregate open", err)
	}
	logger.Info("aggregate_opened", "path", path)
	return &Store{db: db, stream: stream}, nil
}

// Close closes the pebble DB.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	logger.Info("aggregate_closed")
	return err
}

func reactionKey(threadID, postID, kind string) []byte {
	return []byte(reactionPrefix + threadID + ":" + postID + ":" + kind)
}

func activityKey(userID, threadID string) []byte {
	return []byte(activityPrefix + userID + ":" + threadID)
}

func checkSegment(name, v string) error {
	if v == "" || strings.Contains(v, ":") {
		return fmt.Errorf("%w: bad %s %q", boarderr.ErrValidation, name, v)
	}
	return nil
}

// IncrementReaction atomically adds one to a reaction counter and returns
// the new count. The counter springs into existence on first increment.
func (s *Store) IncrementReaction(ctx context.Context, threadID, postID, kind string) (int64, error) {
	for _, seg := range []struct{ name, v string }{
		{"thread id", threadID}, {"post id", postID}, {"reaction kind", kind},
	} {
		if err := checkSegment(seg.name, seg.v); err != nil {
			return 0, err
		}
	}
	key := reactionKey(threadID, postID, kind)
	if err := s.db.Merge(key, encodeCount(1), pebble.Sync); err != nil {
		return 0, boarderr.Unavailable("increment reaction", err)
	}
	count, err := s.ReactionCount(ctx, threadID, postID, kind)
	if err != nil {
		return 0, err
	}
	telemetry.Reactions.Inc()
	s.stream.Publish(models.ChangeEvent{
		Kind:         models.ChangeReaction,
		ThreadID:     threadID,
		PostID:       postID,
		ReactionKind: kind,
		Count:        count,
	})
	return count, nil
}

// ReactionCount reads one counter. Absent counters read as zero.
func (s *Store) ReactionCount(ctx context.Context, threadID, postID, kind string) (int64, error) {
	val, closer, err := s.db.Get(reactionKey(threadID, postID, kind))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return 0, nil
		}
		return 0, boarderr.Unavailable("read reaction", err)
	}
	defer closer.Close()
	return decodeCount(val), nil
}

// PostReactions returns every reaction kind recorded for a post.
func (s *Store) PostReactions(ctx context.Context, threadID, postID string) ([]models.ReactionCount, error) {
	prefix := reactionPrefix + threadID + ":" + postID + ":"
	iter, err := s.db.NewIter(prefixBounds(prefix))
	if err != nil {
		return nil, boarderr.Unavailable("scan reactions", err)
	}
	defer iter.Close()

	var out []models.ReactionCount
	for iter.First(); iter.Valid(); iter.Next() {
		kind := strings.TrimPrefix(string(iter.Key()), prefix)
		out = append(out, models.ReactionCount{
			ThreadID: threadID,
			PostID:   postID,
			Kind:     kind,
			Count:    decodeCount(iter.Value()),
		})
	}
	if err := iter.Error(); err != nil {
		return nil, boarderr.Unavailable("scan reactions", err)
	}
	return out, nil
}

// RecordActivity upserts the user's participation entry for a thread,
// bumping its count and last-seen timestamp.
func (s *Store) RecordActivity(ctx context.Context, userID, threadID string) (models.ActivityEntry, error) {
	if err := checkSegment("user id", userID); err != nil {
		return models.ActivityEntry{}, err
	}
	if err := checkSegment("thread id", threadID); err != nil {
		return models.ActivityEntry{}, err
	}

	s.activityMu.Lock()
	defer s.activityMu.Unlock()

	key := activityKey(userID, threadID)
	now := time.Now().UTC().UnixMilli()
	entry := models.ActivityEntry{UserID: userID, ThreadID: threadID, FirstSeenTS: now}

	val, closer, err := s.db.Get(key)
	switch {
	case err == nil:
		uerr := json.Unmarshal(val, &entry)
		closer.Close()
		if uerr != nil {
			return models.ActivityEntry{}, boarderr.Unavailable("decode activity", uerr)
		}
	case errors.Is(err, pebble.ErrNotFound):
		// first activity for this pair
	default:
		return models.ActivityEntry{}, boarderr.Unavailable("read activity", err)
	}

	entry.Count++
	entry.LastSeenTS = now
	data, err := json.Marshal(entry)
	if err != nil {
		return models.ActivityEntry{}, boarderr.Unavailable("encode activity", err)
	}
	if err := s.db.Set(key, data, pebble.Sync); err != nil {
		return models.ActivityEntry{}, boarderr.Unavailable("write activity", err)
	}

	s.stream.Publish(models.ChangeEvent{
		Kind:     models.ChangeActivity,
		ThreadID: threadID,
		UserID:   userID,
		Count:    entry.Count,
		TS:       now,
	})
	return entry, nil
}

// UserActivity returns all threads the user has participated in.
func (s *Store) UserActivity(ctx context.Context, userID string) ([]models.ActivityEntry, error) {
	prefix := activityPrefix + userID + ":"
	iter, err := s.db.NewIter(prefixBounds(prefix))
	if err != nil {
		return nil, boarderr.Unavailable("scan activity", err)
	}
	defer iter.Close()

	var out []models.ActivityEntry
	for iter.First(); iter.Valid(); iter.Next() {
		var entry models.ActivityEntry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, boarderr.Unavailable("decode activity", err)
		}
		out = append(out, entry)
	}
	if err := iter.Error(); err != nil {
		return nil, boarderr.Unavailable("scan activity", err)
	}
	return out, nil
}

// ThreadIDs returns the distinct thread ids present in either keyspace.
// Used by reconciliation to find rows whose thread is gone.
func (s *Store) ThreadIDs(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}

	iter, err := s.db.NewIter(prefixBounds(reactionPrefix))
	if err != nil {
		return nil, boarderr.Unavailable("scan aggregate keys", err)
	}
	for iter.First(); iter.Valid(); iter.Next() {
		rest := strings.TrimPrefix(string(iter.Key()), reactionPrefix)
		if i := strings.IndexByte(rest, ':'); i > 0 {
			seen[rest[:i]] = struct{}{}
		}
	}
	scanErr := iter.Error()
	iter.Close()
	if scanErr != nil {
		return nil, boarderr.Unavailable("scan aggregate keys", scanErr)
	}

	iter, err = s.db.NewIter(prefixBounds(activityPrefix))
	if err != nil {
		return nil, boarderr.Unavailable("scan aggregate keys", err)
	}
	for iter.First(); iter.Valid(); iter.Next() {
		rest := strings.TrimPrefix(string(iter.Key()), activityPrefix)
		if i := strings.IndexByte(rest, ':'); i > 0 {
			seen[rest[i+1:]] = struct{}{}
		}
	}
	scanErr = iter.Error()
	iter.Close()
	if scanErr != nil {
		return nil, boarderr.Unavailable("scan aggregate keys", scanErr)
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out, nil
}

// DeleteThreadAggregates removes every reaction counter and activity
// entry that references the thread. Returns the number of keys removed.
func (s *Store) DeleteThreadAggregates(ctx context.Context, threadID string) (int, error) {
	if err := checkSegment("thread id", threadID); err != nil {
		return 0, err
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	deleted := 0

	prefix := reactionPrefix + threadID + ":"
	iter, err := s.db.NewIter(prefixBounds(prefix))
	if err != nil {
		return 0, boarderr.Unavailable("scan reactions", err)
	}
	for iter.First(); iter.Valid(); iter.Next() {
		if err := batch.Delete(append([]byte(nil), iter.Key()...), nil); err != nil {
			iter.Close()
			return 0, boarderr.Unavailable("delete reaction", err)
		}
		deleted++
	}
	scanErr := iter.Error()
	iter.Close()
	if scanErr != nil {
		return 0, boarderr.Unavailable("scan reactions", scanErr)
	}

	// activity keys are user-first, so the whole keyspace is scanned
	iter, err = s.db.NewIter(prefixBounds(activityPrefix))
	if err != nil {
		return 0, boarderr.Unavailable("scan activity", err)
	}
	suffix := ":" + threadID
	for iter.First(); iter.Valid(); iter.Next() {
		if strings.HasSuffix(string(iter.Key()), suffix) {
			if err := batch.Delete(append([]byte(nil), iter.Key()...), nil); err != nil {
				iter.Close()
				return 0, boarderr.Unavailable("delete activity", err)
			}
			deleted++
		}
	}
	scanErr = iter.Error()
	iter.Close()
	if scanErr != nil {
		return 0, boarderr.Unavailable("scan activity", scanErr)
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, boarderr.Unavailable("commit aggregate delete", err)
	}
	if deleted > 0 {
		logger.Info("thread_aggregates_deleted", "thread_id", threadID, "keys", deleted)
	}
	return deleted, nil
}

// prefixBounds builds iterator bounds covering exactly one key prefix.
func prefixBounds(prefix string) *pebble.IterOptions {
	lower := []byte(prefix)
	upper := make([]byte, len(lower))
	copy(upper, lower)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] < 0xff {
			upper[i]++
			upper = upper[:i+1]
			break
		}
	}
	return &pebble.IterOptions{LowerBound: lower, UpperBound: upper}
}
