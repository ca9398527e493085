package content

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"boardd/pkg/boarderr"
	"boardd/pkg/models"
	"boardd/pkg/utils"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "board.db") + "?_fk=1"
	s, err := Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedThread(t *testing.T, s *Store, name string) *models.Thread {
	t.Helper()
	th := &models.Thread{ThreadID: utils.GenThreadID(), ThreadName: name, GenreTag: "general"}
	if err := s.CreateThread(context.Background(), th); err != nil {
		t.Fatalf("create thread: %v", err)
	}
	return th
}

func TestCreatePostBumpsLastPostedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	th := seedThread(t, s, "go talk")

	p := &models.Post{
		PostID:   utils.GenPostID(),
		ThreadID: th.ThreadID,
		UserID:   GuestUserID,
		Content:  "first",
	}
	if err := s.CreatePost(ctx, p); err != nil {
		t.Fatalf("create post: %v", err)
	}

	got, err := s.GetThread(ctx, th.ThreadID)
	if err != nil {
		t.Fatalf("get thread: %v", err)
	}
	if got.LastPostedAt == nil || got.LastPostedAt.Unix() != p.PostedAt.Unix() {
		t.Fatalf("last_posted_at = %v, want %v", got.LastPostedAt, p.PostedAt)
	}
}

func TestCreatePostUnknownThread(t *testing.T) {
	s := newTestStore(t)
	p := &models.Post{
		PostID:   utils.GenPostID(),
		ThreadID: "missing",
		UserID:   GuestUserID,
		Content:  "orphan",
	}
	err := s.CreatePost(context.Background(), p)
	if !errors.Is(err, boarderr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreatePostBlankContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	th := seedThread(t, s, "strict")

	p := &models.Post{PostID: utils.GenPostID(), ThreadID: th.ThreadID, UserID: GuestUserID, Content: "  \t "}
	if err := s.CreatePost(ctx, p); !errors.Is(err, boarderr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	posts, err := s.ThreadPosts(ctx, th.ThreadID)
	if err != nil {
		t.Fatalf("thread posts: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("rejected post was written: %+v", posts)
	}
}

func TestDeletePost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	th := seedThread(t, s, "prunable")

	base := time.Now().UTC().Truncate(time.Second)
	first := &models.Post{PostID: utils.GenPostID(), ThreadID: th.ThreadID, UserID: GuestUserID, Content: "keep", PostedAt: base}
	second := &models.Post{PostID: utils.GenPostID(), ThreadID: th.ThreadID, UserID: GuestUserID, Content: "drop", PostedAt: base.Add(time.Second)}
	for _, p := range []*models.Post{first, second} {
		if err := s.CreatePost(ctx, p); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	if err := s.DeletePost(ctx, second.PostID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	posts, err := s.ThreadPosts(ctx, th.ThreadID)
	if err != nil {
		t.Fatalf("thread posts: %v", err)
	}
	if len(posts) != 1 || posts[0].PostID != first.PostID {
		t.Fatalf("posts = %+v, want only %s", posts, first.PostID)
	}

	// deleting a post leaves the thread's recency untouched
	got, err := s.GetThread(ctx, th.ThreadID)
	if err != nil {
		t.Fatalf("get thread: %v", err)
	}
	if got.LastPostedAt == nil || got.LastPostedAt.Unix() != second.PostedAt.Unix() {
		t.Fatalf("last_posted_at = %v, want %v", got.LastPostedAt, second.PostedAt)
	}

	if err := s.DeletePost(ctx, second.PostID); !errors.Is(err, boarderr.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
	if err := s.DeletePost(ctx, "missing"); !errors.Is(err, boarderr.ErrNotFound) {
		t.Fatalf("missing delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteThreadCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	th := seedThread(t, s, "to delete")
	for i := 0; i < 3; i++ {
		p := &models.Post{PostID: utils.GenPostID(), ThreadID: th.ThreadID, UserID: GuestUserID, Content: "x"}
		if err := s.CreatePost(ctx, p); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	if err := s.DeleteThread(ctx, th.ThreadID); err != nil {
		t.Fatalf("delete thread: %v", err)
	}
	if _, err := s.GetThread(ctx, th.ThreadID); !errors.Is(err, boarderr.ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}
	if _, err := s.ThreadPosts(ctx, th.ThreadID); !errors.Is(err, boarderr.ErrNotFound) {
		t.Fatalf("posts after delete = %v, want ErrNotFound", err)
	}
	// second delete reports the row as already gone
	if err := s.DeleteThread(ctx, th.ThreadID); !errors.Is(err, boarderr.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestThreadPostsOrderedOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	th := seedThread(t, s, "ordered")

	base := time.Now().UTC().Truncate(time.Second)
	ids := make([]string, 3)
	for i := range ids {
		ids[i] = utils.GenPostID()
		p := &models.Post{
			PostID:   ids[i],
			ThreadID: th.ThreadID,
			UserID:   GuestUserID,
			Content:  "x",
			PostedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.CreatePost(ctx, p); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	posts, err := s.ThreadPosts(ctx, th.ThreadID)
	if err != nil {
		t.Fatalf("thread posts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("len = %d, want 3", len(posts))
	}
	for i, p := range posts {
		if p.PostID != ids[i] {
			t.Fatalf("posts[%d] = %s, want %s", i, p.PostID, ids[i])
		}
	}
}

func TestArchiveRestoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	th := seedThread(t, s, "archive me")
	other := seedThread(t, s, "stays active")

	meta := &models.ArchiveMetadata{
		ArchiveFileLocation: "/tmp/" + th.ThreadID + ".json",
		DeletedAt:           time.Now().UTC(),
		ArchiveCreatedAt:    time.Now().UTC(),
		ArchiveSize:         1024,
	}
	if err := s.ArchiveThread(ctx, th.ThreadID, meta); err != nil {
		t.Fatalf("archive: %v", err)
	}

	list, err := s.ThreadList(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ThreadID != other.ThreadID {
		t.Fatalf("archived thread still listed: %+v", list)
	}

	if err := s.RestoreThread(ctx, th.ThreadID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	list, err = s.ThreadList(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("restored thread not listed, len = %d", len(list))
	}

	got, err := s.GetArchiveMetadata(ctx, th.ThreadID)
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if !got.RestoreFlag {
		t.Fatalf("restore_flag not set")
	}
}

func TestRestoreWithoutArchiveConflicts(t *testing.T) {
	s := newTestStore(t)
	th := seedThread(t, s, "never archived")
	err := s.RestoreThread(context.Background(), th.ThreadID)
	if !errors.Is(err, boarderr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestDuplicateThreadIDConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	th := seedThread(t, s, "dup")
	dup := &models.Thread{ThreadID: th.ThreadID, ThreadName: "dup2", GenreTag: "general"}
	err := s.CreateThread(ctx, dup)
	if !errors.Is(err, boarderr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestGuestUserSeeded(t *testing.T) {
	s := newTestStore(t)
	// seeding twice must not error
	if err := s.EnsureGuestUser(context.Background()); err != nil {
		t.Fatalf("re-seed guest: %v", err)
	}
	th := seedThread(t, s, "guest thread")
	p := &models.Post{PostID: utils.GenPostID(), ThreadID: th.ThreadID, UserID: GuestUserID, Content: "anon"}
	if err := s.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("guest post: %v", err)
	}
}
