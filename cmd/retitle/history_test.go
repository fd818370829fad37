package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/retitle/internal/model"
	"github.com/Veraticus/retitle/internal/testutil"
)

func TestLoadHistory(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)
	dir := t.TempDir()

	first := testutil.NewEntry(dir, "IMG_0001.jpg", "beach-sunset.jpg")
	second := testutil.NewEntry(dir, "scan.pdf", "lease-agreement.pdf",
		testutil.WithConfirmation(model.ConfirmedByUser))
	testutil.MustAppend(t, store, first, second)

	require.NoError(t, store.RecordRevert(ctx, &model.RevertRecord{
		EntryID:    first.ID,
		Command:    first.RevertCommand,
		RevertedAt: time.Now(),
	}))

	rows, err := loadHistory(ctx, store, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, second.ID, rows[0].ID, "newest entry first")
	assert.False(t, rows[0].Reverted)
	assert.Equal(t, first.ID, rows[1].ID)
	assert.True(t, rows[1].Reverted)

	limited, err := loadHistory(ctx, store, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestWriteHistoryTable(t *testing.T) {
	color.NoColor = true

	now := time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)
	entry := testutil.NewEntry("/tmp", "IMG_0001.jpg", "beach-sunset.jpg")
	entry.ID = 7

	rows := []historyRow{
		{RenameLogEntry: *entry, Reverted: true},
	}

	var buf bytes.Buffer
	require.NoError(t, writeHistoryTable(&buf, rows, now))

	out := buf.String()
	assert.Contains(t, out, "Rename history")
	assert.Contains(t, out, "7")
	assert.Contains(t, out, "IMG_0001.jpg")
	assert.Contains(t, out, "beach-sunset.jpg")
	assert.Contains(t, out, "3 hours ago")
	assert.Contains(t, out, "forced")
	assert.Contains(t, out, "reverted")
}

func TestWriteHistoryJSON(t *testing.T) {
	entry := testutil.NewEntry("/tmp", "a.txt", "notes.txt", testutil.WithTags("work"))
	entry.ID = 3

	var buf bytes.Buffer
	require.NoError(t, writeHistoryJSON(&buf, []historyRow{{RenameLogEntry: *entry}}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)

	assert.EqualValues(t, 3, decoded[0]["id"])
	assert.Equal(t, "notes.txt", decoded[0]["newName"])
	assert.Equal(t, false, decoded[0]["reverted"])
	assert.Equal(t, []any{"work"}, decoded[0]["tags"])
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{name: "short name unchanged", input: "notes.txt", width: 20, want: "notes.txt"},
		{name: "exact width unchanged", input: "abcdefghij", width: 10, want: "abcdefghij"},
		{name: "keeps tail", input: "very-long-directory/report.pdf", width: 13, want: "...report.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateName(tt.input, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len([]rune(got)), tt.width)
		})
	}
}
