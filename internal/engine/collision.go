package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver hands out target paths that are neither on disk nor
// claimed by another file in the same run. All methods are goroutine-safe.
type CollisionResolver struct {
	exists func(source, target string) bool
	owners map[string]string // target path → source path that owns it
	mu     sync.Mutex
}

// NewCollisionResolver creates a resolver that checks the filesystem.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		exists: occupied,
		owners: make(map[string]string),
	}
}

// Resolve returns requested if it is free, else the first free variant with
// sep and a counter starting at 2 inserted before the extension.
func (cr *CollisionResolver) Resolve(source, requested, sep string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.free(source, requested) {
		cr.owners[requested] = source
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for counter := 2; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s%s%d%s", stem, sep, counter, ext))
		if cr.free(source, candidate) {
			cr.owners[candidate] = source
			return candidate
		}
	}
}

// Release gives up a claim, for example after a failed rename.
func (cr *CollisionResolver) Release(source, target string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.owners[target] == source {
		delete(cr.owners, target)
	}
}

func (cr *CollisionResolver) free(source, target string) bool {
	if owner, ok := cr.owners[target]; ok && owner != source {
		return false
	}
	return !cr.exists(source, target)
}

// occupied reports whether target exists and is a different file than
// source. On case-insensitive filesystems a case-only rename resolves to the
// source itself and is not a collision.
func occupied(source, target string) bool {
	targetInfo, err := os.Lstat(target)
	if err != nil {
		return !os.IsNotExist(err)
	}
	sourceInfo, err := os.Lstat(source)
	if err != nil {
		return true
	}
	return !os.SameFile(sourceInfo, targetInfo)
}
