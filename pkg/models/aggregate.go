package models

// ActivityEntry records a user's participation in a thread. Advisory data:
// no referential integrity against the content store.
type ActivityEntry struct {
	UserID      string `json:"user_id"`
	ThreadID    string `json:"thread_id"`
	Count       int64  `json:"count"`
	FirstSeenTS int64  `json:"first_seen_ts"`
	LastSeenTS  int64  `json:"last_seen_ts"`
}

// ChangeKind discriminates change stream events.
type ChangeKind string

const (
	ChangeReaction ChangeKind = "reaction"
	ChangeActivity ChangeKind = "activity"
)

// ChangeEvent is one row-level mutation in the aggregate store, carrying
// the new image of the row. Seq increases monotonically per process, so
// consumers can de-duplicate redelivered events per key.
type ChangeEvent struct {
	Seq          uint64     `json:"seq"`
	Kind         ChangeKind `json:"kind"`
	ThreadID     string     `json:"thread_id"`
	PostID       string     `json:"post_id,omitempty"`
	UserID       string     `json:"user_id,omitempty"`
	ReactionKind string     `json:"reaction_kind,omitempty"`
	Count        int64      `json:"count"`
	TS           int64      `json:"ts"`
}

// ReactionCount is the read-side image of one reaction counter.
type ReactionCount struct {
	ThreadID string `json:"thread_id"`
	PostID   string `json:"post_id"`
	Kind     string `json:"kind"`
	Count    int64  `json:"count"`
}
