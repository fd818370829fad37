package engine

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollisionResolver_Claims(t *testing.T) {
	cr := NewCollisionResolver()
	dir := t.TempDir()
	target := filepath.Join(dir, "report.pdf")

	assert.Equal(t, target, cr.Resolve("/in/a.pdf", target, "-"))
	assert.Equal(t, target, cr.Resolve("/in/a.pdf", target, "-"), "owner may resolve again")
	assert.Equal(t, filepath.Join(dir, "report-2.pdf"), cr.Resolve("/in/b.pdf", target, "-"))
	assert.Equal(t, filepath.Join(dir, "report-3.pdf"), cr.Resolve("/in/c.pdf", target, "-"))

	cr.Release("/in/a.pdf", target)
	assert.Equal(t, target, cr.Resolve("/in/d.pdf", target, "-"))
}

func TestCollisionResolver_Separators(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		base string
		sep  string
		want string
	}{
		{name: "kebab", base: "q3-report.txt", sep: "-", want: "q3-report-2.txt"},
		{name: "snake", base: "q3_report.txt", sep: "_", want: "q3_report_2.txt"},
		{name: "camel", base: "q3Report.txt", sep: "", want: "q3Report2.txt"},
		{name: "sentence", base: "Q3 report.txt", sep: " ", want: "Q3 report 2.txt"},
		{name: "no extension", base: "notes", sep: "-", want: "notes-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := NewCollisionResolver()
			target := filepath.Join(dir, tt.base)
			cr.Resolve("/in/first", target, tt.sep)

			assert.Equal(t, filepath.Join(dir, tt.want), cr.Resolve("/in/second", target, tt.sep))
		})
	}
}

func TestCollisionResolver_ExistingFiles(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "scan.txt")
	require.NoError(t, os.WriteFile(source, []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memo.txt"), []byte("b"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memo-2.txt"), []byte("c"), 0o600))

	cr := NewCollisionResolver()
	assert.Equal(t, filepath.Join(dir, "memo-3.txt"), cr.Resolve(source, filepath.Join(dir, "memo.txt"), "-"))
	assert.Equal(t, source, cr.Resolve(source, source, "-"), "a file never collides with itself")
}

func TestCollisionResolver_Concurrent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "same.txt")
	cr := NewCollisionResolver()

	const n = 25
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cr.Resolve(filepath.Join("/in", string(rune('a'+i))), target, "-")
		}(i)
	}
	wg.Wait()

	unique := make(map[string]bool)
	for _, r := range results {
		unique[r] = true
	}
	assert.Len(t, unique, n)
}
