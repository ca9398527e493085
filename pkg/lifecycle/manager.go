// Package lifecycle coordinates the content store, the aggregate store
// and snapshot export. Relational writes are authoritative; aggregate
// writes follow them and never veto an operation.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"boardd/pkg/aggregate"
	"boardd/pkg/archive"
	"boardd/pkg/boarderr"
	"boardd/pkg/content"
	"boardd/pkg/logger"
	"boardd/pkg/models"
	"boardd/pkg/telemetry"
	"boardd/pkg/utils"
	"boardd/pkg/validation"
)

const activityTimeout = 5 * time.Second

// Manager is the single entry point for board operations.
type Manager struct {
	content  *content.Store
	agg      *aggregate.Store
	stream   *aggregate.Stream
	exporter *archive.Exporter

	pending sync.WaitGroup
}

// New wires a manager over its stores.
func New(cs *content.Store, as *aggregate.Store, stream *aggregate.Stream, exp *archive.Exporter) *Manager {
	return &Manager{content: cs, agg: as, stream: stream, exporter: exp}
}

// Drain waits for in-flight background aggregate writes. Called on
// shutdown and by tests.
func (m *Manager) Drain() { m.pending.Wait() }

// CreateUser validates and inserts a user.
func (m *Manager) CreateUser(ctx context.Context, req *validation.CreateUserRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	u := &models.User{
		UserID:          req.UserID,
		Username:        req.Username,
		ProfileImageURL: req.ProfileImageURL,
	}
	if err := m.content.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateThread validates and inserts a thread with a fresh id.
func (m *Manager) CreateThread(ctx context.Context, req *validation.CreateThreadRequest) (*models.Thread, error) {
	req.ThreadName = strings.TrimSpace(req.ThreadName)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	t := &models.Thread{
		ThreadID:   utils.GenThreadID(),
		ThreadName: req.ThreadName,
		GenreTag:   req.GenreTag,
	}
	if err := m.content.CreateThread(ctx, t); err != nil {
		return nil, err
	}
	telemetry.ThreadsCreated.Inc()
	return t, nil
}

// CreatePost validates and inserts a post, attributing authorless posts
// to the guest user. The activity rollup is written in the background;
// its failure never fails the post.
func (m *Manager) CreatePost(ctx context.Context, req *validation.CreatePostRequest) (*models.Post, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	userID := req.UserID
	if userID == "" {
		userID = content.GuestUserID
	}
	p := &models.Post{
		PostID:   utils.GenPostID(),
		ThreadID: req.ThreadID,
		UserID:   userID,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if err := m.content.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	telemetry.PostsCreated.Inc()

	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		actx, cancel := context.WithTimeout(context.Background(), activityTimeout)
		defer cancel()
		if _, err := m.agg.RecordActivity(actx, userID, p.ThreadID); err != nil {
			telemetry.ActivityFailures.Inc()
			logger.Warn("activity_record_failed", "user_id", userID, "thread_id", p.ThreadID, "err", err)
		}
	}()
	return p, nil
}

// DeletePost removes a single post.
func (m *Manager) DeletePost(ctx context.Context, postID string) error {
	if err := m.content.DeletePost(ctx, postID); err != nil {
		return err
	}
	telemetry.PostsDeleted.Inc()
	return nil
}

// DeleteThread removes a thread with its posts. Deleting an absent
// thread is treated as success, so retries converge. Aggregate rows are
// left for the reconciler; they are advisory and invisible once the
// thread is gone.
func (m *Manager) DeleteThread(ctx context.Context, threadID string) error {
	err := m.content.DeleteThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, boarderr.ErrNotFound) {
			logger.Info("thread_delete_noop", "thread_id", threadID)
			return nil
		}
		return err
	}
	telemetry.ThreadsDeleted.Inc()
	return nil
}

// React validates and applies a reaction increment, returning the new
// count. Counters are advisory and may outlive their post, so no
// existence check is made against the content store.
func (m *Manager) React(ctx context.Context, req *validation.ReactRequest) (int64, error) {
	if err := validation.Struct(req); err != nil {
		return 0, err
	}
	return m.agg.IncrementReaction(ctx, req.ThreadID, req.PostID, req.Kind)
}

// PostReactions returns all reaction tallies for a post.
func (m *Manager) PostReactions(ctx context.Context, threadID, postID string) ([]models.ReactionCount, error) {
	return m.agg.PostReactions(ctx, threadID, postID)
}

// UserActivity returns the user's participation rollup.
func (m *Manager) UserActivity(ctx context.Context, userID string) ([]models.ActivityEntry, error) {
	return m.agg.UserActivity(ctx, userID)
}

// ArchiveThread exports a snapshot of the thread and then flags it
// archived in one relational transaction. Archiving an already archived
// thread yields ErrConflict; the export happens before any flag flips,
// so a failed export leaves the thread untouched.
func (m *Manager) ArchiveThread(ctx context.Context, threadID string) (*models.ArchiveMetadata, error) {
	t, err := m.content.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if t.DeletionFlag {
		return nil, fmt.Errorf("%w: thread %s already archived", boarderr.ErrConflict, threadID)
	}
	posts, err := m.content.ThreadPosts(ctx, threadID)
	if err != nil {
		return nil, err
	}
	path, size, err := m.exporter.Export(t, posts)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	meta := &models.ArchiveMetadata{
		ThreadID:            threadID,
		ArchiveFileLocation: path,
		DeletedAt:           now,
		ArchiveCreatedAt:    now,
		ArchiveSize:         size,
	}
	if err := m.content.ArchiveThread(ctx, threadID, meta); err != nil {
		return nil, err
	}
	telemetry.ThreadsArchived.Inc()
	return meta, nil
}

// RestoreThread returns an archived thread to the active list.
func (m *Manager) RestoreThread(ctx context.Context, threadID string) error {
	if err := m.content.RestoreThread(ctx, threadID); err != nil {
		return err
	}
	telemetry.ThreadsRestored.Inc()
	return nil
}

// GetArchiveMetadata returns the archive record for a thread.
func (m *Manager) GetArchiveMetadata(ctx context.Context, threadID string) (*models.ArchiveMetadata, error) {
	return m.content.GetArchiveMetadata(ctx, threadID)
}

// ThreadList returns active thread summaries, newest first.
func (m *Manager) ThreadList(ctx context.Context) ([]models.ThreadSummary, error) {
	return m.content.ThreadList(ctx)
}

// GetThread returns one thread.
func (m *Manager) GetThread(ctx context.Context, threadID string) (*models.Thread, error) {
	return m.content.GetThread(ctx, threadID)
}

// ThreadPosts returns a thread's posts, oldest first.
func (m *Manager) ThreadPosts(ctx context.Context, threadID string) ([]models.Post, error) {
	return m.content.ThreadPosts(ctx, threadID)
}

// Subscribe attaches a consumer to the change stream.
func (m *Manager) Subscribe() (<-chan models.ChangeEvent, func()) {
	return m.stream.Subscribe()
}

// Ping reports whether both stores are reachable.
func (m *Manager) Ping(ctx context.Context) error {
	return m.content.Ping(ctx)
}
