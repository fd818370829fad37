package engine

import (
	"context"

	"github.com/Veraticus/retitle/internal/cli"
	"github.com/Veraticus/retitle/internal/content"
	"github.com/Veraticus/retitle/internal/llm"
	"github.com/Veraticus/retitle/internal/model"
)

// ContentSource turns a path into something the model can read.
type ContentSource interface {
	Acquire(ctx context.Context, path string) (*content.Content, error)
}

// MetadataProber reports filesystem facts about a path.
type MetadataProber interface {
	ProbeMetadata(path string) (*model.FileMetadata, error)
}

// TagReader returns the OS tags attached to a path.
type TagReader interface {
	ReadTags(ctx context.Context, path string) ([]string, error)
}

// ModelClient proposes a name for a prompt.
type ModelClient interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// Confirmer decides whether a proposed rename may be applied.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (cli.Decision, error)
}

// Processor runs the rename pipeline for a single file.
type Processor interface {
	Process(ctx context.Context, path string) Result
}
