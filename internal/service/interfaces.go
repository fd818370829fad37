// Package service defines the interfaces shared between application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/retitle/internal/model"
)

// RenameLogSink accepts one entry per applied rename.
// Implementations must write each entry atomically.
type RenameLogSink interface {
	AppendRenameLog(ctx context.Context, entry *model.RenameLogEntry) error
}

// RenameLogStore is the persistence contract used by the CLI.
type RenameLogStore interface {
	RenameLogSink

	GetRenameLog(ctx context.Context, id int64) (*model.RenameLogEntry, error)
	ListRenameLogs(ctx context.Context, limit int) ([]model.RenameLogEntry, error)
	LatestUnreverted(ctx context.Context) (*model.RenameLogEntry, error)
	RecordRevert(ctx context.Context, revert *model.RevertRecord) error
	IsReverted(ctx context.Context, entryID int64) (bool, error)

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
