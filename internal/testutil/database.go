// Package testutil provides shared helpers for tests that need a rename log.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/retitle/internal/model"
	"github.com/Veraticus/retitle/internal/storage"
)

// SetupTestDB creates a migrated in-memory rename log that is closed when
// the test finishes.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// EntryOption customizes an entry built by NewEntry.
type EntryOption func(*model.RenameLogEntry)

// WithTags sets the entry tags.
func WithTags(tags ...string) EntryOption {
	return func(e *model.RenameLogEntry) {
		e.Tags = tags
	}
}

// WithConfirmation sets how the entry was approved.
func WithConfirmation(source model.ConfirmationSource) EntryOption {
	return func(e *model.RenameLogEntry) {
		e.Confirmation = source
	}
}

// WithAcceptedAt sets the acceptance time.
func WithAcceptedAt(at time.Time) EntryOption {
	return func(e *model.RenameLogEntry) {
		e.AcceptedAt = at
	}
}

// NewEntry builds a valid, unsaved log entry that moves dir/from to dir/to.
func NewEntry(dir, from, to string, opts ...EntryOption) *model.RenameLogEntry {
	originalPath := filepath.Join(dir, from)
	newPath := filepath.Join(dir, to)

	entry := &model.RenameLogEntry{
		AcceptedAt:            time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		OriginalPath:          originalPath,
		NewPath:               newPath,
		OriginalRelativePath:  from,
		NewRelativePath:       to,
		OriginalName:          from,
		NewName:               to,
		Confirmation:          model.ConfirmedByForce,
		RevertCommand:         model.RevertCommand(newPath, originalPath),
		RevertCommandRelative: model.RevertCommand(to, from),
		Context: model.NameContext{
			CaseStyle:    "kebabCase",
			FinalName:    to,
			Strategy:     "line",
			CharLimit:    20,
			PromptLength: 512,
		},
	}
	for _, opt := range opts {
		opt(entry)
	}
	return entry
}

// MustAppend saves entries in order and fails the test on error.
func MustAppend(t *testing.T, store *storage.SQLiteStorage, entries ...*model.RenameLogEntry) {
	t.Helper()

	for i, entry := range entries {
		if err := store.AppendRenameLog(context.Background(), entry); err != nil {
			t.Fatalf("append entry %d: %v", i, err)
		}
	}
}
