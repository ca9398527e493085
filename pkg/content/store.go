// Package content is the relational store of record for boards. Threads,
// posts, users and archive metadata live here; writes to this store are
// authoritative and aggregate writes follow them.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	glogger "gorm.io/gorm/logger"

	"boardd/pkg/boarderr"
	"boardd/pkg/logger"
	"boardd/pkg/models"
)

// GuestUserID is the author recorded for posts whose user cannot be
// resolved. It is a real row seeded at migration so foreign keys hold.
const GuestUserID = "guest"

// Store wraps the relational database handle.
type Store struct {
	db *gorm.DB
}

// Open connects to the relational database. Driver is "postgres" or
// "sqlite"; sqlite DSNs should carry "?_fk=1" so foreign keys are
// enforced.
func Open(driver, dsn string) (*Store, error) {
	var dial gorm.Dialector
	switch driver {
	case "postgres":
		dial = postgres.Open(dsn)
	case "sqlite":
		dial = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: unsupported content driver %q", boarderr.ErrValidation, driver)
	}
	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		logger.Error("content_open_failed", "driver", driver, "err", err)
		return nil, boarderr.Unavailable("content open", err)
	}
	logger.Info("content_opened", "driver", driver)
	return &Store{db: db}, nil
}

// Migrate creates or updates the schema and seeds the guest user.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Thread{},
		&models.Post{},
		&models.ArchiveMetadata{},
	)
	if err != nil {
		return boarderr.Unavailable("content migrate", err)
	}
	return s.EnsureGuestUser(ctx)
}

// EnsureGuestUser seeds the fallback author row. Idempotent.
func (s *Store) EnsureGuestUser(ctx context.Context) error {
	guest := models.User{UserID: GuestUserID, Username: "guest", CreatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&guest).Error
	if err != nil {
		return boarderr.Unavailable("seed guest user", err)
	}
	return nil
}

// CreateUser inserts a user row.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return s.translate("create user", err)
	}
	logger.Info("user_created", "user_id", u.UserID)
	return nil
}

// CreateThread inserts a thread row. A fresh thread's last_posted_at
// starts equal to created_at.
func (s *Store) CreateThread(ctx context.Context, t *models.Thread) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.LastPostedAt == nil {
		t.LastPostedAt = &t.CreatedAt
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return s.translate("create thread", err)
	}
	logger.Info("thread_created", "thread_id", t.ThreadID, "genre", t.GenreTag)
	return nil
}

// CreatePost inserts a post and bumps the parent thread's last_posted_at
// in one transaction. Unknown threads yield ErrNotFound and blank content
// yields ErrValidation before the insert is attempted.
func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("%w: blank post content", boarderr.ErrValidation)
	}
	if p.PostedAt.IsZero() {
		p.PostedAt = time.Now().UTC()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var thread models.Thread
		if err := tx.First(&thread, "thread_id = ?", p.ThreadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: thread %s", boarderr.ErrNotFound, p.ThreadID)
			}
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return tx.Model(&models.Thread{}).
			Where("thread_id = ?", p.ThreadID).
			Update("last_posted_at", p.PostedAt).Error
	})
	if err != nil {
		return s.translate("create post", err)
	}
	logger.Info("post_created", "post_id", p.PostID, "thread_id", p.ThreadID)
	return nil
}

// DeletePost removes a single post. Missing posts yield ErrNotFound.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	res := s.db.WithContext(ctx).Delete(&models.Post{}, "post_id = ?", postID)
	if res.Error != nil {
		return s.translate("delete post", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: post %s", boarderr.ErrNotFound, postID)
	}
	logger.Info("post_deleted", "post_id", postID)
	return nil
}

// DeleteThread hard-deletes a thread with its posts and archive metadata
// in one transaction. Missing threads yield ErrNotFound.
func (s *Store) DeleteThread(ctx context.Context, threadID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Post{}, "thread_id = ?", threadID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ArchiveMetadata{}, "thread_id = ?", threadID).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Thread{}, "thread_id = ?", threadID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: thread %s", boarderr.ErrNotFound, threadID)
		}
		return nil
	})
	if err != nil {
		return s.translate("delete thread", err)
	}
	logger.Info("thread_deleted", "thread_id", threadID)
	return nil
}

// ThreadList returns summaries of active (non-archived) threads, newest
// first.
func (s *Store) ThreadList(ctx context.Context) ([]models.ThreadSummary, error) {
	var out []models.ThreadSummary
	err := s.db.WithContext(ctx).
		Model(&models.Thread{}).
		Where("deletion_flag = ?", false).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, s.translate("list threads", err)
	}
	return out, nil
}

// GetThread returns one thread row, archived or not.
func (s *Store) GetThread(ctx context.Context, threadID string) (*models.Thread, error) {
	var t models.Thread
	if err := s.db.WithContext(ctx).First(&t, "thread_id = ?", threadID).Error; err != nil {
		return nil, s.translate("get thread", err)
	}
	return &t, nil
}

// ThreadPosts returns a thread's posts ordered oldest first. The thread
// must exist; an empty thread returns an empty slice, not an error.
func (s *Store) ThreadPosts(ctx context.Context, threadID string) ([]models.Post, error) {
	if _, err := s.GetThread(ctx, threadID); err != nil {
		return nil, err
	}
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("posted_at ASC").
		Find(&posts).Error
	if err != nil {
		return nil, s.translate("list posts", err)
	}
	return posts, nil
}

// ArchiveThread flips the thread's deletion flag and records archive
// metadata in one transaction. The snapshot export must have succeeded
// before this is called.
func (s *Store) ArchiveThread(ctx context.Context, threadID string, meta *models.ArchiveMetadata) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Thread{}).
			Where("thread_id = ?", threadID).
			Update("deletion_flag", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: thread %s", boarderr.ErrNotFound, threadID)
		}
		meta.ThreadID = threadID
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "thread_id"}},
			UpdateAll: true,
		}).Create(meta).Error
	})
	if err != nil {
		return s.translate("archive thread", err)
	}
	logger.Info("thread_archived", "thread_id", threadID, "archive_file", meta.ArchiveFileLocation)
	return nil
}

// RestoreThread clears the deletion flag of an archived thread and marks
// the archive metadata as restored. Restoring a thread that was never
// archived yields ErrConflict.
func (s *Store) RestoreThread(ctx context.Context, threadID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meta models.ArchiveMetadata
		if err := tx.First(&meta, "thread_id = ?", threadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: thread %s was never archived", boarderr.ErrConflict, threadID)
			}
			return err
		}
		res := tx.Model(&models.Thread{}).
			Where("thread_id = ?", threadID).
			Update("deletion_flag", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: thread %s", boarderr.ErrNotFound, threadID)
		}
		return tx.Model(&models.ArchiveMetadata{}).
			Where("thread_id = ?", threadID).
			Update("restore_flag", true).Error
	})
	if err != nil {
		return s.translate("restore thread", err)
	}
	logger.Info("thread_restored", "thread_id", threadID)
	return nil
}

// GetArchiveMetadata returns the archive record for a thread.
func (s *Store) GetArchiveMetadata(ctx context.Context, threadID string) (*models.ArchiveMetadata, error) {
	var meta models.ArchiveMetadata
	if err := s.db.WithContext(ctx).First(&meta, "thread_id = ?", threadID).Error; err != nil {
		return nil, s.translate("get archive metadata", err)
	}
	return &meta, nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return boarderr.Unavailable("content ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return boarderr.Unavailable("content ping", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm errors onto the store's error taxonomy. Taxonomy
// errors produced inside transactions pass through untouched.
func (s *Store) translate(op string, err error) error {
	switch {
	case errors.Is(err, boarderr.ErrNotFound),
		errors.Is(err, boarderr.ErrConflict),
		errors.Is(err, boarderr.ErrValidation):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", boarderr.ErrNotFound, op)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s: duplicate key", boarderr.ErrConflict, op)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s: referenced row missing", boarderr.ErrValidation, op)
	default:
		return boarderr.Unavailable(op, err)
	}
}
