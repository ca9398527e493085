package archive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"boardd/pkg/boarderr"
	"boardd/pkg/models"
)

func sampleThread() *models.Thread {
	return &models.Thread{
		ThreadID:   "t1",
		ThreadName: "archived talk",
		GenreTag:   "general",
		CreatedAt:  time.Now().UTC(),
	}
}

func TestExportAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, 0)
	posts := []models.Post{
		{PostID: "p1", ThreadID: "t1", UserID: "u1", Content: "hello", PostedAt: time.Now().UTC()},
		{PostID: "p2", ThreadID: "t1", UserID: "u2", Content: "world", PostedAt: time.Now().UTC()},
	}

	path, size, err := e.Export(sampleThread(), posts)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if path != filepath.Join(dir, "t1.json") {
		t.Fatalf("path = %s", path)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() != size {
		t.Fatalf("stat = %v, size %d want %d", err, fi.Size(), size)
	}

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Thread.ThreadID != "t1" || len(snap.Posts) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Posts[0].Content != "hello" {
		t.Fatalf("posts[0] = %+v", snap.Posts[0])
	}
}

func TestExportNoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, 0)
	if _, _, err := e.Export(sampleThread(), nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, ent := range entries {
		if strings.HasPrefix(ent.Name(), ".export-") {
			t.Fatalf("temp file left behind: %s", ent.Name())
		}
	}
}

func TestExportEnforcesSizeLimit(t *testing.T) {
	e := New(t.TempDir(), 16)
	_, _, err := e.Export(sampleThread(), []models.Post{{PostID: "p1", Content: strings.Repeat("x", 1024)}})
	if !errors.Is(err, boarderr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, boarderr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
