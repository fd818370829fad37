package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/retitle/internal/common"
	"github.com/Veraticus/retitle/internal/config"
	"github.com/Veraticus/retitle/internal/content"
	"github.com/Veraticus/retitle/internal/engine"
)

func TestRenameCmdFlags(t *testing.T) {
	cmd := renameCmd()

	for _, name := range []string{
		"provider", "model", "base-url", "api-key",
		"case", "chars", "language", "frames", "custom-prompt",
		"include-subdirectories", "force", "dry-run", "filename-hint",
		"metadata", "date-fallback", "tags", "pitch-deck",
		"pitch-deck-focus", "content-limit", "prompt-limit", "concurrency",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag --%s", name)
	}

	chars := cmd.Flags().Lookup("chars")
	assert.Equal(t, "20", chars.DefValue)
	assert.Equal(t, "true", cmd.Flags().Lookup("metadata").DefValue)
	assert.Equal(t, "f", cmd.Flags().Lookup("force").Shorthand)
}

func TestDiscoverAll(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	for _, p := range []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(sub, "c.txt"),
	} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}

	t.Run("deduplicates overlapping arguments", func(t *testing.T) {
		paths, err := discoverAll([]string{dir, filepath.Join(dir, "a.txt")}, false)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.txt"),
			filepath.Join(dir, "b.txt"),
		}, paths)
	})

	t.Run("recursive includes subdirectories", func(t *testing.T) {
		paths, err := discoverAll([]string{dir}, true)
		require.NoError(t, err)
		assert.Len(t, paths, 3)
		assert.Contains(t, paths, filepath.Join(sub, "c.txt"))
	})

	t.Run("missing path fails", func(t *testing.T) {
		_, err := discoverAll([]string{filepath.Join(dir, "missing")}, false)
		assert.Error(t, err)
	})
}

func TestResultPrinter(t *testing.T) {
	tests := []struct {
		name   string
		result engine.Result
		want   []string
	}{
		{
			name: "renamed",
			result: engine.Result{
				Outcome: engine.OutcomeRenamed,
				Path:    "/data/IMG_0001.jpg",
				NewPath: "/data/beach-sunset.jpg",
			},
			want: []string{"IMG_0001.jpg", "beach-sunset.jpg"},
		},
		{
			name: "dry run shows the proposal",
			result: engine.Result{
				Outcome: engine.OutcomeSkipped,
				Reason:  engine.ReasonDryRun,
				Path:    "/data/scan.pdf",
				NewPath: "/data/lease-agreement.pdf",
			},
			want: []string{"scan.pdf", "lease-agreement.pdf"},
		},
		{
			name: "skip with reason",
			result: engine.Result{
				Outcome: engine.OutcomeSkipped,
				Reason:  engine.ReasonUnchanged,
				Path:    "/data/notes.txt",
			},
			want: []string{"notes.txt", engine.ReasonUnchanged},
		},
		{
			name: "unsupported uses the error",
			result: engine.Result{
				Outcome: engine.OutcomeUnsupported,
				Path:    "/data/archive.zip",
				Err:     common.ErrUnsupportedFile,
			},
			want: []string{"archive.zip", "unsupported file"},
		},
		{
			name: "error",
			result: engine.Result{
				Outcome: engine.OutcomeError,
				Path:    "/data/report.txt",
				Err:     errors.New("model unavailable"),
			},
			want: []string{"report.txt", "model unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := &resultPrinter{out: &buf}
			p.print(tt.result)

			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestPrintSummary(t *testing.T) {
	t.Run("counts outcomes", func(t *testing.T) {
		summary := engine.Summary{
			Total:   3,
			Renamed: 2,
			Errors:  1,
			Results: make([]engine.Result, 3),
		}

		var buf bytes.Buffer
		printSummary(&buf, summary, false)

		out := buf.String()
		assert.Contains(t, out, "3 files")
		assert.Contains(t, out, "Renamed:")
		assert.Contains(t, out, "retitle revert latest")
		assert.NotContains(t, out, "Not started")
	})

	t.Run("dry run reports proposals", func(t *testing.T) {
		summary := engine.Summary{
			Total:   2,
			Skipped: 2,
			Results: []engine.Result{
				{Outcome: engine.OutcomeSkipped, Reason: engine.ReasonDryRun},
				{Outcome: engine.OutcomeSkipped, Reason: engine.ReasonUnchanged},
			},
		}

		var buf bytes.Buffer
		printSummary(&buf, summary, true)

		out := buf.String()
		assert.Contains(t, out, "Proposed:")
		assert.NotContains(t, out, "retitle revert latest")
	})

	t.Run("interrupted run", func(t *testing.T) {
		summary := engine.Summary{
			Total:   5,
			Renamed: 1,
			Results: make([]engine.Result, 1),
		}

		var buf bytes.Buffer
		printSummary(&buf, summary, false)
		assert.Contains(t, buf.String(), "Not started:")
	})

	t.Run("empty run prints nothing", func(t *testing.T) {
		var buf bytes.Buffer
		printSummary(&buf, engine.Summary{}, false)
		assert.Empty(t, buf.String())
	})
}

func TestMaxTextBytes(t *testing.T) {
	opts := config.Default()
	assert.Equal(t, int64(content.DefaultMaxTextBytes), maxTextBytes(opts))

	opts.ClassifierScanLimit = 500_000
	assert.Equal(t, int64(2_000_000), maxTextBytes(opts))
}

func TestPluralFiles(t *testing.T) {
	assert.Equal(t, "1 file", pluralFiles(1))
	assert.Equal(t, "1,200 files", pluralFiles(1200))
}
