package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Veraticus/retitle/internal/common"
)

// DefaultFrames is the number of frames sampled from a video.
const DefaultFrames = 3

// Content is what a file offers to the naming model.
type Content struct {
	cleanup      func() error
	Kind         Kind
	Text         string
	VideoSummary string
	Images       []string
}

// Cleanup removes any scratch files created for this content. It is safe to
// call on a nil Content and more than once.
func (c *Content) Cleanup() error {
	if c == nil || c.cleanup == nil {
		return nil
	}
	fn := c.cleanup
	c.cleanup = nil
	if err := fn(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrCleanup, err)
	}
	return nil
}

// OnCleanup registers fn to run when the content is cleaned up, after any
// cleanup registered before it.
func (c *Content) OnCleanup(fn func() error) {
	prev := c.cleanup
	c.cleanup = func() error {
		var err error
		if prev != nil {
			err = prev()
		}
		return errors.Join(err, fn())
	}
}

// Config configures a Source.
type Config struct {
	Logger       *slog.Logger
	TempDir      string
	Frames       int
	MaxTextBytes int64
}

// Source turns file paths into Content.
type Source struct {
	logger       *slog.Logger
	workDirs     *WorkDirManager
	run          commandRunner
	frames       int
	maxTextBytes int64
}

// NewSource creates a Source using the external tools found on PATH.
func NewSource(cfg Config) *Source {
	if cfg.Frames <= 0 {
		cfg.Frames = DefaultFrames
	}
	if cfg.MaxTextBytes <= 0 {
		cfg.MaxTextBytes = DefaultMaxTextBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Source{
		logger:       cfg.Logger,
		workDirs:     NewWorkDirManager(cfg.TempDir),
		run:          runCommand,
		frames:       cfg.Frames,
		maxTextBytes: cfg.MaxTextBytes,
	}
}

// Acquire detects the kind of path and extracts its content.
// It returns common.ErrUnsupportedFile or common.ErrNoExtractableContent for
// files that cannot be named from their content.
func (s *Source) Acquire(ctx context.Context, path string) (*Content, error) {
	kind, err := Detect(path)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindImage:
		return &Content{Kind: kind, Images: []string{path}}, nil
	case KindVideo:
		return s.acquireVideo(ctx, path)
	case KindText, KindPDF, KindDocument:
		return s.acquireText(ctx, path, kind)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFile, filepath.Base(path))
	}
}

func (s *Source) acquireText(ctx context.Context, path string, kind Kind) (*Content, error) {
	var (
		text string
		err  error
	)
	switch kind {
	case KindPDF:
		text, err = s.extractPDF(ctx, path)
	case KindDocument:
		text, err = ExtractDocx(path)
	default:
		text, err = s.readText(path)
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrNoExtractableContent, filepath.Base(path))
	}
	return &Content{Kind: kind, Text: text}, nil
}

func (s *Source) acquireVideo(ctx context.Context, path string) (_ *Content, err error) {
	info, err := s.probeVideo(ctx, path)
	if err != nil {
		return nil, err
	}

	dir, cleanup, err := s.workDirs.Create()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if cerr := cleanup(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("%w: %w", common.ErrCleanup, cerr))
			}
		}
	}()

	stamps := FrameTimestamps(info.Duration, s.frames)
	frames, taken, err := s.extractFrames(ctx, path, dir, stamps)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames extracted from %s", common.ErrNoExtractableContent, filepath.Base(path))
	}

	return &Content{
		Kind:         KindVideo,
		Images:       frames,
		VideoSummary: videoSummary(filepath.Base(path), info, taken),
		cleanup:      cleanup,
	}, nil
}
