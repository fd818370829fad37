package content

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WorkDirManager creates per-file scratch directories for extracted frames.
type WorkDirManager struct {
	baseDir string
}

// NewWorkDirManager creates a manager rooted at baseDir, or the system temp
// directory when baseDir is empty.
func NewWorkDirManager(baseDir string) *WorkDirManager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &WorkDirManager{baseDir: baseDir}
}

// Create makes a new uniquely named directory and returns it with a cleanup
// function that removes it.
func (w *WorkDirManager) Create() (string, func() error, error) {
	if err := os.MkdirAll(w.baseDir, 0o700); err != nil {
		return "", nil, fmt.Errorf("failed to create work directory root: %w", err)
	}

	dir := filepath.Join(w.baseDir, "retitle-frames-"+uuid.New().String())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	cleanup := func() error {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		return nil
	}

	return dir, cleanup, nil
}

// BaseDir returns the directory work directories are created in.
func (w *WorkDirManager) BaseDir() string {
	return w.baseDir
}
