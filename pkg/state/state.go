package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Paths is the canonical runtime folder layout under the data directory.
type Paths struct {
	Data      string
	Aggregate string
	Archive   string
	Tmp       string
}

var (
	mu      sync.RWMutex
	current Paths
)

// Init ensures the runtime folder layout exists under dataDir and records
// it as the process-wide layout. It verifies paths are not symlinks, have
// restrictive permissions, and are writable by the process.
func Init(dataDir string) (Paths, error) {
	p := Paths{
		Data:      dataDir,
		Aggregate: filepath.Join(dataDir, "aggregate"),
		Archive:   filepath.Join(dataDir, "archive"),
		Tmp:       filepath.Join(dataDir, "tmp"),
	}

	for _, dir := range []string{p.Aggregate, p.Archive, p.Tmp} {
		if err := ensureDir(dir); err != nil {
			return Paths{}, err
		}
	}

	mu.Lock()
	current = p
	mu.Unlock()
	return p, nil
}

// Current returns the layout recorded by Init.
func Current() Paths {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func ensureDir(p string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("cannot create parent for %s: %w", p, err)
	}

	// if path exists, reject symlinks and non-directories
	if fi, err := os.Lstat(p); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path is a symlink: %s", p)
		}
		if !fi.IsDir() {
			return fmt.Errorf("path exists and is not a directory: %s", p)
		}
		if fi.Mode().Perm()&0o022 != 0 {
			return fmt.Errorf("path has permissive mode (group/other write): %s", p)
		}
	}

	if err := os.MkdirAll(p, 0o700); err != nil {
		return fmt.Errorf("cannot create path %s: %w", p, err)
	}

	// writability check: create and remove a temp file
	tmp, err := os.CreateTemp(p, ".validate-*")
	if err != nil {
		return fmt.Errorf("path not writable: %s: %w", p, err)
	}
	tmp.Close()
	_ = os.Remove(tmp.Name())
	return nil
}
