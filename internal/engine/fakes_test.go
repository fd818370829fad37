package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Veraticus/retitle/internal/cli"
	"github.com/Veraticus/retitle/internal/content"
	"github.com/Veraticus/retitle/internal/llm"
	"github.com/Veraticus/retitle/internal/model"
)

type fakeSource struct {
	err        error
	cleanupErr error
	text       string
	images     []string
	cleanups   atomic.Int32
}

func (f *fakeSource) Acquire(_ context.Context, _ string) (*content.Content, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := &content.Content{Kind: content.KindText, Text: f.text, Images: f.images}
	c.OnCleanup(func() error {
		f.cleanups.Add(1)
		return f.cleanupErr
	})
	return c, nil
}

type fakeModel struct {
	reply    func(req llm.Request) (string, error)
	requests []llm.Request
	mu       sync.Mutex
}

func replyWith(text string) *fakeModel {
	return &fakeModel{reply: func(llm.Request) (string, error) { return text, nil }}
}

func (f *fakeModel) Generate(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.reply(req)
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeConfirmer struct {
	err       error
	questions []string
	decision  cli.Decision
	mu        sync.Mutex
}

func approve() *fakeConfirmer {
	return &fakeConfirmer{decision: cli.Decision{Approved: true, Source: model.ConfirmedByUser}}
}

func (f *fakeConfirmer) Confirm(_ context.Context, question string) (cli.Decision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, question)
	return f.decision, f.err
}

type fakeLog struct {
	err     error
	entries []*model.RenameLogEntry
	mu      sync.Mutex
}

func (f *fakeLog) AppendRenameLog(_ context.Context, entry *model.RenameLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLog) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeMetadata struct {
	meta *model.FileMetadata
	err  error
}

func (f fakeMetadata) ProbeMetadata(string) (*model.FileMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.meta
	return &copied, nil
}

// sharedMetadata hands out the same record on every probe.
type sharedMetadata struct {
	meta *model.FileMetadata
}

func (f sharedMetadata) ProbeMetadata(string) (*model.FileMetadata, error) {
	return f.meta, nil
}

type fakeTags []string

func (f fakeTags) ReadTags(context.Context, string) ([]string, error) {
	return f, nil
}

var errBoom = errors.New("boom")

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
}
