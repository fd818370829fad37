package content

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/Veraticus/retitle/internal/common"
	"github.com/Veraticus/retitle/internal/model"
)

// MetadataProber reads filesystem metadata.
type MetadataProber struct{}

// ProbeMetadata stats path. Creation time is filled in where the platform records it.
func (MetadataProber) ProbeMetadata(path string) (*model.FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMetadataProbe, err)
	}

	size := info.Size()
	modified := info.ModTime()

	meta := &model.FileMetadata{
		Size:       &size,
		SizeLabel:  humanize.Bytes(uint64(size)),
		ModifiedAt: &modified,
	}
	if created, ok := birthTime(info); ok {
		meta.CreatedAt = &created
	}

	return meta, nil
}
