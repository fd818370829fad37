package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRevertCommand(t *testing.T) {
	tests := []struct {
		name     string
		newPath  string
		origPath string
		want     string
	}{
		{
			name:     "plain paths",
			newPath:  "/tmp/q3-budget-review.pdf",
			origPath: "/tmp/scan0001.pdf",
			want:     `mv "/tmp/q3-budget-review.pdf" "/tmp/scan0001.pdf"`,
		},
		{
			name:     "spaces are preserved inside quotes",
			newPath:  "docs/new name.txt",
			origPath: "docs/old name.txt",
			want:     `mv "docs/new name.txt" "docs/old name.txt"`,
		},
		{
			name:     "double quote backslash and backtick are escaped",
			newPath:  "/tmp/a.txt",
			origPath: "/tmp/say \"hi\" `now` \\ok.txt",
			want:     "mv \"/tmp/a.txt\" \"/tmp/say \\\"hi\\\" \\`now\\` \\\\ok.txt\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RevertCommand(tt.newPath, tt.origPath))
		})
	}
}

func TestFileMetadata_FallbackDate(t *testing.T) {
	created := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
	modified := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		meta   *FileMetadata
		name   string
		want   string
		wantOK bool
	}{
		{name: "nil metadata", meta: nil},
		{name: "no timestamps", meta: &FileMetadata{}},
		{name: "created wins", meta: &FileMetadata{CreatedAt: &created, ModifiedAt: &modified}, want: "2024-03-09", wantOK: true},
		{name: "modified when created missing", meta: &FileMetadata{ModifiedAt: &modified}, want: "2025-01-02", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.meta.FallbackDate()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc", Preview("abc", 5))
	assert.Equal(t, "ab", Preview("abc", 2))
	assert.Equal(t, "éé", Preview("ééé", 2))
}
