package models

import "time"

// User is a registered author. Rows are immutable once created except for
// the profile fields.
type User struct {
	UserID          string    `gorm:"column:user_id;primaryKey;type:varchar(255)" json:"user_id"`
	Username        string    `gorm:"column:username;type:varchar(255);not null" json:"username"`
	ProfileImageURL *string   `gorm:"column:profile_image_url;type:varchar(2083)" json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (User) TableName() string { return "users" }

// Thread is a named discussion container. DeletionFlag marks archival
// (soft delete); hard deletion removes the row outright.
type Thread struct {
	ThreadID     string     `gorm:"column:thread_id;primaryKey;type:varchar(255)" json:"thread_id"`
	ThreadName   string     `gorm:"column:thread_name;type:varchar(255);not null" json:"thread_name"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	GenreTag     string     `gorm:"column:genre_tag;type:varchar(100);not null" json:"genre_tag"`
	LastPostedAt *time.Time `gorm:"column:last_posted_at" json:"last_posted_at,omitempty"`
	DeletionFlag bool       `gorm:"column:deletion_flag;not null;default:false" json:"deletion_flag"`
}

func (Thread) TableName() string { return "threads" }

// Post is a single message inside a thread. ThreadID and UserID carry
// foreign keys; guest posts use the reserved guest user row.
type Post struct {
	PostID   string    `gorm:"column:post_id;primaryKey;type:varchar(255)" json:"post_id"`
	ThreadID string    `gorm:"column:thread_id;type:varchar(255);not null;index" json:"thread_id"`
	UserID   string    `gorm:"column:user_id;type:varchar(255);not null" json:"user_id"`
	Content  string    `gorm:"column:content;type:text;not null" json:"content"`
	PostedAt time.Time `gorm:"column:posted_at;not null" json:"posted_at"`
	ImageURL *string   `gorm:"column:image_url;type:varchar(2083)" json:"image_url,omitempty"`

	Thread *Thread `gorm:"belongsTo;foreignKey:ThreadID;references:ThreadID" json:"-"`
	User   *User   `gorm:"belongsTo;foreignKey:UserID;references:UserID" json:"-"`
}

func (Post) TableName() string { return "posts" }

// ArchiveMetadata records an exported snapshot of an archived thread.
// One row per archived thread, keyed by the thread id.
type ArchiveMetadata struct {
	ThreadID            string    `gorm:"column:thread_id;primaryKey;type:varchar(255)" json:"thread_id"`
	ArchiveFileLocation string    `gorm:"column:archive_file_location;type:varchar(2083);not null" json:"archive_file_location"`
	DeletedAt           time.Time `gorm:"column:deleted_at;not null" json:"deleted_at"`
	ArchiveCreatedAt    time.Time `gorm:"column:archive_created_at;not null" json:"archive_created_at"`
	ArchiveSize         int64     `gorm:"column:archive_size;not null" json:"archive_size"`
	RestoreFlag         bool      `gorm:"column:restore_flag;not null;default:false" json:"restore_flag"`
}

func (ArchiveMetadata) TableName() string { return "archive_metadata" }

// ThreadSummary is the list-view projection of a thread.
type ThreadSummary struct {
	ThreadID   string `json:"thread_id"`
	ThreadName string `json:"thread_name"`
}
