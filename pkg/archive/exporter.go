// Package archive exports thread snapshots to durable files before the
// thread is flagged archived in the content store.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"boardd/pkg/boarderr"
	"boardd/pkg/logger"
	"boardd/pkg/models"
)

// Snapshot is the full exported image of a thread.
type Snapshot struct {
	Thread     models.Thread `json:"thread"`
	Posts      []models.Post `json:"posts"`
	ExportedAt time.Time     `json:"exported_at"`
}

// Exporter writes snapshots under Dir. MaxSize of zero means unlimited.
type Exporter struct {
	Dir     string
	MaxSize int64
}

// New returns an exporter rooted at dir.
func New(dir string, maxSize int64) *Exporter {
	return &Exporter{Dir: dir, MaxSize: maxSize}
}

// Export writes the snapshot to <dir>/<thread_id>.json via a temp file
// and rename, so readers never observe a partial snapshot. Returns the
// final path and the file size.
func (e *Exporter) Export(thread *models.Thread, posts []models.Post) (string, int64, error) {
	snap := Snapshot{Thread: *thread, Posts: posts, ExportedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", 0, boarderr.Unavailable("encode snapshot", err)
	}
	if e.MaxSize > 0 && int64(len(data)) > e.MaxSize {
		return "", 0, fmt.Errorf("%w: snapshot for %s is %s, limit %s",
			boarderr.ErrValidation, thread.ThreadID,
			humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(e.MaxSize)))
	}

	if err := os.MkdirAll(e.Dir, 0o700); err != nil {
		return "", 0, boarderr.Unavailable("create archive dir", err)
	}
	final := filepath.Join(e.Dir, thread.ThreadID+".json")
	tmp, err := os.CreateTemp(e.Dir, ".export-*")
	if err != nil {
		return "", 0, boarderr.Unavailable("create snapshot temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", 0, boarderr.Unavailable("write snapshot", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", 0, boarderr.Unavailable("sync snapshot", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", 0, boarderr.Unavailable("close snapshot", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", 0, boarderr.Unavailable("publish snapshot", err)
	}

	size := int64(len(data))
	logger.Info("snapshot_exported",
		"thread_id", thread.ThreadID,
		"file", final,
		"size", humanize.Bytes(uint64(size)))
	return final, size, nil
}

// Load reads a snapshot back from disk.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: snapshot %s", boarderr.ErrNotFound, path)
		}
		return nil, boarderr.Unavailable("read snapshot", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, boarderr.Unavailable("decode snapshot", err)
	}
	return &snap, nil
}
