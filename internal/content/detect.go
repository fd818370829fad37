// Package content acquires nameable content from files: image paths, sampled
// video frames or extracted text.
package content

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies a file by how its content is acquired.
type Kind string

// File kinds.
const (
	KindImage       Kind = "image"
	KindVideo       Kind = "video"
	KindText        Kind = "text"
	KindPDF         Kind = "pdf"
	KindDocument    Kind = "document"
	KindUnsupported Kind = "unsupported"
)

var extensionKinds = map[string]Kind{
	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage, ".gif": KindImage,
	".webp": KindImage, ".bmp": KindImage, ".tif": KindImage, ".tiff": KindImage,
	".heic": KindImage,

	".mp4": KindVideo, ".mov": KindVideo, ".mkv": KindVideo, ".avi": KindVideo,
	".webm": KindVideo, ".m4v": KindVideo,

	".txt": KindText, ".md": KindText, ".markdown": KindText, ".csv": KindText,
	".tsv": KindText, ".json": KindText, ".yaml": KindText, ".yml": KindText,
	".xml": KindText, ".html": KindText, ".htm": KindText, ".log": KindText,
	".rtf": KindText, ".tex": KindText,

	".pdf": KindPDF,

	".docx": KindDocument,
}

// sniffLength is the number of bytes http.DetectContentType considers.
const sniffLength = 512

// Detect classifies path by extension, then by sniffing its first bytes.
func Detect(path string) (Kind, error) {
	if kind, ok := extensionKinds[strings.ToLower(filepath.Ext(path))]; ok {
		return kind, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return KindUnsupported, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return KindUnsupported, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return kindForMIME(http.DetectContentType(head[:n])), nil
}

func kindForMIME(mime string) Kind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	case strings.HasPrefix(mime, "application/pdf"):
		return KindPDF
	case strings.HasPrefix(mime, "text/"):
		return KindText
	default:
		return KindUnsupported
	}
}
