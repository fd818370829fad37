package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/retitle/internal/common"
	"github.com/Veraticus/retitle/internal/model"
)

const renameLogColumns = `
	l.id, l.accepted_at, l.original_path, l.new_path,
	l.original_relative_path, l.new_relative_path,
	l.original_name, l.new_name, l.confirmation,
	l.revert_command, l.revert_command_relative,
	l.tags, l.metadata, l.context`

// AppendRenameLog writes entry in its own transaction and sets entry.ID.
func (s *SQLiteStorage) AppendRenameLog(ctx context.Context, entry *model.RenameLogEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRenameLogEntry(entry); err != nil {
		return err
	}

	if entry.AcceptedAt.IsZero() {
		entry.AcceptedAt = time.Now()
	}

	tagsJSON, err := marshalNullable(entry.Tags, len(entry.Tags) > 0)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	metadataJSON, err := marshalNullable(entry.Metadata, entry.Metadata != nil)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	contextJSON, err := json.Marshal(entry.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal name context: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO rename_log (
			accepted_at, original_path, new_path,
			original_relative_path, new_relative_path,
			original_name, new_name, confirmation,
			revert_command, revert_command_relative,
			tags, metadata, context
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.AcceptedAt.UTC(),
		entry.OriginalPath,
		entry.NewPath,
		entry.OriginalRelativePath,
		entry.NewRelativePath,
		entry.OriginalName,
		entry.NewName,
		string(entry.Confirmation),
		entry.RevertCommand,
		entry.RevertCommandRelative,
		tagsJSON,
		metadataJSON,
		string(contextJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert rename log entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read rename log id: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rename log entry: %w", err)
	}

	entry.ID = id
	return nil
}

// GetRenameLog returns the entry with the given ID.
func (s *SQLiteStorage) GetRenameLog(ctx context.Context, id int64) (*model.RenameLogEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidArgument)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+renameLogColumns+` FROM rename_log l WHERE l.id = ?`, id)
	entry, err := scanRenameLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rename log entry %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListRenameLogs returns entries newest first. A limit of zero or less
// returns every entry.
func (s *SQLiteStorage) ListRenameLogs(ctx context.Context, limit int) ([]model.RenameLogEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	return s.listRenameLogsTx(ctx, s.db, limit)
}

func (s *SQLiteStorage) listRenameLogsTx(ctx context.Context, q queryable, limit int) ([]model.RenameLogEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+renameLogColumns+`
		FROM rename_log l
		ORDER BY l.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rename log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.RenameLogEntry
	for rows.Next() {
		entry, scanErr := scanRenameLog(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rename log: %w", err)
	}
	return entries, nil
}

// LatestUnreverted returns the newest entry without a journaled revert.
func (s *SQLiteStorage) LatestUnreverted(ctx context.Context) (*model.RenameLogEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+renameLogColumns+`
		FROM rename_log l
		WHERE NOT EXISTS (SELECT 1 FROM rename_reverts r WHERE r.entry_id = l.id)
		ORDER BY l.id DESC
		LIMIT 1
	`)
	entry, err := scanRenameLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no unreverted rename: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordRevert journals that an entry was reverted and sets revert.ID.
// Reverting the same entry twice returns common.ErrAlreadyApplied.
func (s *SQLiteStorage) RecordRevert(ctx context.Context, revert *model.RevertRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRevertRecord(revert); err != nil {
		return err
	}
	if revert.RevertedAt.IsZero() {
		revert.RevertedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM rename_log WHERE id = ?`, revert.EntryID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to look up rename log entry: %w", err)
	}
	if exists == 0 {
		err = fmt.Errorf("rename log entry %d: %w", revert.EntryID, common.ErrNotFound)
		return err
	}

	reverted, err := isRevertedTx(ctx, tx, revert.EntryID)
	if err != nil {
		return err
	}
	if reverted {
		err = fmt.Errorf("rename log entry %d: %w", revert.EntryID, common.ErrAlreadyApplied)
		return err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO rename_reverts (entry_id, command, reverted_at)
		VALUES (?, ?, ?)
	`, revert.EntryID, revert.Command, revert.RevertedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record revert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read revert id: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit revert: %w", err)
	}

	revert.ID = id
	return nil
}

// IsReverted reports whether a revert has been journaled for entryID.
func (s *SQLiteStorage) IsReverted(ctx context.Context, entryID int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	return isRevertedTx(ctx, s.db, entryID)
}

func isRevertedTx(ctx context.Context, q queryable, entryID int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM rename_reverts WHERE entry_id = ?`, entryID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check revert journal: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRenameLog(row rowScanner) (*model.RenameLogEntry, error) {
	var (
		entry        model.RenameLogEntry
		confirmation string
		tagsJSON     sql.NullString
		metadataJSON sql.NullString
		contextJSON  string
	)

	err := row.Scan(
		&entry.ID,
		&entry.AcceptedAt,
		&entry.OriginalPath,
		&entry.NewPath,
		&entry.OriginalRelativePath,
		&entry.NewRelativePath,
		&entry.OriginalName,
		&entry.NewName,
		&confirmation,
		&entry.RevertCommand,
		&entry.RevertCommandRelative,
		&tagsJSON,
		&metadataJSON,
		&contextJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan rename log entry: %w", err)
	}

	entry.Confirmation = model.ConfirmationSource(confirmation)

	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &entry.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags for entry %d: %w", entry.ID, err)
		}
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		var metadata model.FileMetadata
		if err := json.Unmarshal([]byte(metadataJSON.String), &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for entry %d: %w", entry.ID, err)
		}
		entry.Metadata = &metadata
	}
	if err := json.Unmarshal([]byte(contextJSON), &entry.Context); err != nil {
		return nil, fmt.Errorf("failed to unmarshal name context for entry %d: %w", entry.ID, err)
	}

	return &entry, nil
}

func marshalNullable(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
