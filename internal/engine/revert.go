package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/retitle/internal/common"
	"github.com/Veraticus/retitle/internal/model"
	"github.com/Veraticus/retitle/internal/service"
)

// ErrRevertConflict is returned when undoing a rename would overwrite a file.
var ErrRevertConflict = errors.New("original path is occupied")

// Revert moves entry.NewPath back to entry.OriginalPath. It refuses when the
// renamed file is gone or when something now lives at the original path.
func Revert(entry *model.RenameLogEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: nil rename log entry", common.ErrInvalidConfig)
	}
	if _, err := os.Lstat(entry.NewPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("renamed file %s: %w", entry.NewPath, common.ErrNotFound)
		}
		return fmt.Errorf("failed to stat %s: %w", entry.NewPath, err)
	}
	if _, err := os.Lstat(entry.OriginalPath); err == nil {
		return fmt.Errorf("%w: %s", ErrRevertConflict, entry.OriginalPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", entry.OriginalPath, err)
	}

	if err := os.Rename(entry.NewPath, entry.OriginalPath); err != nil {
		return fmt.Errorf("failed to revert %s: %w", entry.NewPath, err)
	}
	return nil
}

// Reverter undoes logged renames and journals each revert.
type Reverter struct {
	store service.RenameLogStore
	now   func() time.Time
}

// NewReverter creates a Reverter backed by store.
func NewReverter(store service.RenameLogStore) *Reverter {
	return &Reverter{store: store, now: time.Now}
}

// Revert undoes entry once. A second attempt returns common.ErrAlreadyApplied
// without touching the filesystem.
func (r *Reverter) Revert(ctx context.Context, entry *model.RenameLogEntry) (*model.RevertRecord, error) {
	reverted, err := r.store.IsReverted(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	if reverted {
		return nil, fmt.Errorf("rename log entry %d: %w", entry.ID, common.ErrAlreadyApplied)
	}

	if err := Revert(entry); err != nil {
		return nil, err
	}

	record := &model.RevertRecord{
		RevertedAt: r.now(),
		Command:    entry.RevertCommand,
		EntryID:    entry.ID,
	}
	if err := r.store.RecordRevert(context.WithoutCancel(ctx), record); err != nil {
		return nil, fmt.Errorf("reverted %s but failed to journal it: %w", entry.NewPath, err)
	}
	return record, nil
}
