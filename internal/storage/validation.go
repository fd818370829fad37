// Package storage provides the SQLite-backed rename log and revert journal.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/retitle/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidEntry    = errors.New("invalid rename log entry")
	ErrInvalidRevert   = errors.New("invalid revert record")
	ErrInvalidArgument = errors.New("invalid argument")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRenameLogEntry(entry *model.RenameLogEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if entry.ID != 0 {
		return fmt.Errorf("%w: entry already has ID %d", ErrInvalidEntry, entry.ID)
	}
	required := []struct {
		value string
		name  string
	}{
		{entry.OriginalPath, "original path"},
		{entry.NewPath, "new path"},
		{entry.OriginalName, "original name"},
		{entry.NewName, "new name"},
		{entry.RevertCommand, "revert command"},
		{string(entry.Confirmation), "confirmation"},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: missing %s", ErrInvalidEntry, field.name)
		}
	}
	if entry.OriginalPath == entry.NewPath {
		return fmt.Errorf("%w: original and new path are identical", ErrInvalidEntry)
	}
	switch entry.Confirmation {
	case model.ConfirmedByForce, model.ConfirmedByUser:
	default:
		return fmt.Errorf("%w: unknown confirmation %q", ErrInvalidEntry, entry.Confirmation)
	}
	return nil
}

func validateRevertRecord(revert *model.RevertRecord) error {
	if revert == nil {
		return fmt.Errorf("%w: revert", ErrNilParameter)
	}
	if revert.EntryID <= 0 {
		return fmt.Errorf("%w: missing entry ID", ErrInvalidRevert)
	}
	if strings.TrimSpace(revert.Command) == "" {
		return fmt.Errorf("%w: missing command", ErrInvalidRevert)
	}
	return nil
}
