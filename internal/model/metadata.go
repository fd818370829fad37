package model

import "time"

// FileMetadata holds what the filesystem reports about a file before it is renamed.
type FileMetadata struct {
	Size       *int64     `json:"size"`
	CreatedAt  *time.Time `json:"createdAt"`
	ModifiedAt *time.Time `json:"modifiedAt"`
	SizeLabel  string     `json:"sizeLabel,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
}

// FallbackDate returns the creation date, else the modification date, as YYYY-MM-DD.
// The second return value is false when neither timestamp is known.
func (m *FileMetadata) FallbackDate() (string, bool) {
	if m == nil {
		return "", false
	}
	if m.CreatedAt != nil && !m.CreatedAt.IsZero() {
		return m.CreatedAt.Format(time.DateOnly), true
	}
	if m.ModifiedAt != nil && !m.ModifiedAt.IsZero() {
		return m.ModifiedAt.Format(time.DateOnly), true
	}
	return "", false
}
