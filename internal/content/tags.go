package content

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// TagReader reads Finder tags. Platforms without Finder tags report none.
type TagReader struct {
	run  commandRunner
	goos string
}

// NewTagReader creates a reader for the current platform.
func NewTagReader() *TagReader {
	return &TagReader{run: runCommand, goos: runtime.GOOS}
}

// ReadTags returns the user tags of path.
func (r *TagReader) ReadTags(ctx context.Context, path string) ([]string, error) {
	if r.goos != "darwin" {
		return nil, nil
	}

	out, err := r.run(ctx, "mdls", "-raw", "-name", "kMDItemUserTags", path)
	if err != nil {
		return nil, fmt.Errorf("mdls %q: %w", path, err)
	}
	return ParseMdlsTags(string(out)), nil
}

// ParseMdlsTags parses the raw kMDItemUserTags value printed by mdls, such as
//
//	(
//	    Red,
//	    "Project X"
//	)
func ParseMdlsTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "(null)" {
		return nil
	}
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")

	var tags []string
	for _, line := range strings.Split(raw, "\n") {
		tag := strings.TrimSpace(line)
		tag = strings.TrimSuffix(tag, ",")
		tag = strings.Trim(tag, `"`)
		// Older macOS appends the label color index after a newline escape.
		if i := strings.Index(tag, `\n`); i >= 0 {
			tag = tag[:i]
		}
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
