package llm

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/Veraticus/retitle/internal/common"
)

type encodedImage struct {
	MediaType string
	Data      string
}

// encodeImages reads and base64-encodes image files for inline transport.
func encodeImages(paths []string) ([]encodedImage, error) {
	images := make([]encodedImage, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, &common.RetryableError{Err: fmt.Errorf("failed to read image %s: %w", p, err), Retryable: false}
		}
		images = append(images, encodedImage{
			MediaType: http.DetectContentType(raw),
			Data:      base64.StdEncoding.EncodeToString(raw),
		})
	}
	return images, nil
}

func (i encodedImage) dataURL() string {
	return "data:" + i.MediaType + ";base64," + i.Data
}
