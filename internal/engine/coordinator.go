// Package engine drives the per-file rename pipeline and the batch runner.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/retitle/internal/caseconv"
	"github.com/Veraticus/retitle/internal/classification"
	"github.com/Veraticus/retitle/internal/cli"
	"github.com/Veraticus/retitle/internal/common"
	"github.com/Veraticus/retitle/internal/config"
	"github.com/Veraticus/retitle/internal/content"
	"github.com/Veraticus/retitle/internal/llm"
	"github.com/Veraticus/retitle/internal/model"
	"github.com/Veraticus/retitle/internal/prompt"
	"github.com/Veraticus/retitle/internal/resolver"
	"github.com/Veraticus/retitle/internal/service"
)

// SystemPrompt frames every naming request.
const SystemPrompt = "You name files. Reply with the proposed file name only, without an extension or explanation."

// Outcome is the terminal state of one file.
type Outcome string

// Terminal outcomes.
const (
	OutcomeRenamed     Outcome = "renamed"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeNoContent   Outcome = "no-content"
	OutcomeError       Outcome = "error"
)

// Skip reasons.
const (
	ReasonDryRun        = "dry run"
	ReasonUnchanged     = "name unchanged"
	ReasonPitchDeckSkip = "model declined to name the pitch deck"
)

// Result reports what happened to one file.
type Result struct {
	Err        error
	CleanupErr error
	Entry      *model.RenameLogEntry
	Context    *model.NameContext
	Path       string
	NewPath    string
	Reason     string
	Outcome    Outcome
}

// Deps are the collaborators a Coordinator calls.
type Deps struct {
	Content    ContentSource
	Metadata   MetadataProber
	Tags       TagReader
	Model      ModelClient
	Confirmer  Confirmer
	Log        service.RenameLogSink
	Prompts    *prompt.Builder
	Classifier *classification.Classifier
	Collisions *CollisionResolver
}

// Config configures a Coordinator.
type Config struct {
	Logger     *slog.Logger
	Now        func() time.Time
	WorkingDir string
	Options    config.Options
}

// Coordinator runs the rename state machine for single files. It holds no
// per-file state, so Process may be called concurrently.
type Coordinator struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
	wd     string
	opts   config.Options
}

// NewCoordinator validates deps and fills optional ones with defaults.
func NewCoordinator(deps Deps, cfg Config) (*Coordinator, error) {
	if deps.Content == nil || deps.Model == nil || deps.Confirmer == nil || deps.Log == nil {
		return nil, fmt.Errorf("%w: content source, model, confirmer and log sink are required", common.ErrMissingConfig)
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}

	if deps.Metadata == nil {
		deps.Metadata = content.MetadataProber{}
	}
	if deps.Tags == nil {
		deps.Tags = content.NewTagReader()
	}
	if deps.Prompts == nil {
		builder, err := prompt.NewBuilder()
		if err != nil {
			return nil, err
		}
		deps.Prompts = builder
	}
	if deps.Classifier == nil {
		deps.Classifier = classification.DefaultClassifier()
	}
	if deps.Collisions == nil {
		deps.Collisions = NewCollisionResolver()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.WorkingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg.WorkingDir = wd
	}

	return &Coordinator{
		deps:   deps,
		logger: cfg.Logger,
		now:    cfg.Now,
		wd:     cfg.WorkingDir,
		opts:   cfg.Options,
	}, nil
}

type state int

const (
	stateStart state = iota
	stateMetadata
	stateTags
	stateContent
	stateSynthesis
	stateConfirm
	stateApply
	stateLog
	stateDone
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateMetadata:
		return "metadata"
	case stateTags:
		return "tags"
	case stateContent:
		return "content"
	case stateSynthesis:
		return "synthesis"
	case stateConfirm:
		return "confirm"
	case stateApply:
		return "apply"
	case stateLog:
		return "log"
	case stateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// attempt is the working set of one Process call.
type attempt struct {
	content   *content.Content
	metadata  *model.FileMetadata
	entry     *model.RenameLogEntry
	nameCtx   model.NameContext
	decision  cli.Decision
	tags      []string
	path      string
	abs       string
	target    string
	result    Result
	pitchDeck bool
}

func (a *attempt) finish(outcome Outcome, reason string, err error) state {
	a.result.Outcome = outcome
	a.result.Reason = reason
	a.result.Err = err
	return stateDone
}

// Process renames one file and reports its terminal state. Per-file failures
// are returned in the Result, never as panics.
func (c *Coordinator) Process(ctx context.Context, path string) (res Result) {
	a := &attempt{path: path, result: Result{Path: path}}

	defer func() {
		if err := a.content.Cleanup(); err != nil {
			c.logger.Warn("Failed to clean up extracted content", "path", path, "error", err)
			res.CleanupErr = err
		}
	}()

	for st := stateStart; st != stateDone; {
		// Once the file is renamed the log entry must still be written.
		if st < stateApply {
			if err := ctx.Err(); err != nil {
				a.finish(OutcomeError, "canceled", err)
				break
			}
		}
		c.logger.Debug("rename state", "path", path, "state", st)
		st = c.step(ctx, st, a)
	}

	if a.abs != "" {
		nameCtx := a.nameCtx
		a.result.Context = &nameCtx
	}
	a.result.Entry = a.entry
	return a.result
}

func (c *Coordinator) step(ctx context.Context, st state, a *attempt) state {
	switch st {
	case stateStart:
		return c.start(a)
	case stateMetadata:
		return c.probeMetadata(a)
	case stateTags:
		return c.readTags(ctx, a)
	case stateContent:
		return c.acquireContent(ctx, a)
	case stateSynthesis:
		return c.synthesize(ctx, a)
	case stateConfirm:
		return c.confirm(ctx, a)
	case stateApply:
		return c.apply(a)
	case stateLog:
		return c.appendLog(ctx, a)
	default:
		return a.finish(OutcomeError, "invalid state", fmt.Errorf("unexpected state %s", st))
	}
}

func (c *Coordinator) start(a *attempt) state {
	abs, err := filepath.Abs(a.path)
	if err != nil {
		return a.finish(OutcomeError, "invalid path", fmt.Errorf("failed to resolve %s: %w", a.path, err))
	}
	info, err := os.Stat(abs)
	if err != nil {
		return a.finish(OutcomeError, "cannot read file", fmt.Errorf("failed to stat %s: %w", a.path, err))
	}
	if !info.Mode().IsRegular() {
		return a.finish(OutcomeUnsupported, "not a regular file", fmt.Errorf("%w: %s", common.ErrUnsupportedFile, a.path))
	}
	a.abs = abs
	a.nameCtx = model.NameContext{
		CaseStyle:          string(c.opts.Case),
		CharLimit:          c.opts.Chars,
		Language:           c.opts.Language,
		CustomInstructions: c.opts.CustomPrompt != "",
		FilenameHint:       c.opts.UseFilenameHint,
		PitchDeckFocus:     c.opts.PitchDeckFocus,
	}
	return stateMetadata
}

// probeMetadata is best effort; the pipeline continues without metadata.
func (c *Coordinator) probeMetadata(a *attempt) state {
	meta, err := c.deps.Metadata.ProbeMetadata(a.abs)
	if err != nil {
		c.logger.Warn("Metadata probe failed", "path", a.path, "error", err)
		return stateTags
	}
	a.metadata = meta
	return stateTags
}

func (c *Coordinator) readTags(ctx context.Context, a *attempt) state {
	if !c.opts.AppendTags {
		return stateContent
	}
	tags, err := c.deps.Tags.ReadTags(ctx, a.abs)
	if err != nil {
		c.logger.Warn("Failed to read tags", "path", a.path, "error", err)
		return stateContent
	}
	a.tags = tags
	if a.metadata != nil {
		// Probed metadata is shared with the prober; tags go on a copy.
		withTags := *a.metadata
		withTags.Tags = append([]string(nil), tags...)
		a.metadata = &withTags
	}
	return stateContent
}

func (c *Coordinator) acquireContent(ctx context.Context, a *attempt) state {
	got, err := c.deps.Content.Acquire(ctx, a.abs)
	switch {
	case errors.Is(err, common.ErrUnsupportedFile):
		return a.finish(OutcomeUnsupported, "unsupported file type", err)
	case errors.Is(err, common.ErrNoExtractableContent):
		return a.finish(OutcomeNoContent, "no extractable content", err)
	case err != nil:
		return a.finish(OutcomeError, "content extraction failed", err)
	}

	a.content = got
	if strings.TrimSpace(got.Text) == "" && len(got.Images) == 0 && strings.TrimSpace(got.VideoSummary) == "" {
		return a.finish(OutcomeNoContent, "no extractable content",
			fmt.Errorf("%w: %s", common.ErrNoExtractableContent, filepath.Base(a.path)))
	}
	return stateSynthesis
}

func (c *Coordinator) synthesize(ctx context.Context, a *attempt) state {
	ext := filepath.Ext(a.abs)
	base := filepath.Base(a.abs)

	var deck *model.DeckClassification
	if c.opts.PitchDeck && a.content.Text != "" {
		verdict := c.deps.Classifier.Classify(a.content.Text, c.opts.ClassifierScanLimit)
		deck = &verdict
		a.pitchDeck = verdict.IsPitchDeck
		a.nameCtx.DeckDetected = verdict.IsPitchDeck
		a.nameCtx.DeckScore = verdict.Score
		a.nameCtx.DeckConfidence = verdict.Confidence
		c.logger.Debug("pitch deck classification",
			"path", a.path,
			"score", verdict.Score,
			"confidence", verdict.Confidence,
			"summary", verdict.Summary)
	}
	a.nameCtx.PitchDeckMode = a.pitchDeck

	req := prompt.Request{
		Deck:               deck,
		CaseStyle:          string(c.opts.Case),
		Language:           c.opts.Language,
		VideoSummary:       a.content.VideoSummary,
		Content:            a.content.Text,
		CustomInstructions: c.opts.CustomPrompt,
		Focus:              c.opts.PitchDeckFocus,
		Budget:             prompt.Budget{ContentLimit: c.opts.ContentLimit, PromptLimit: c.opts.PromptLimit},
		CharLimit:          c.opts.Chars,
		DateFallback:       c.opts.DateFallback,
		PitchDeck:          a.pitchDeck,
	}
	if c.opts.UseMetadata || c.opts.DateFallback {
		req.Metadata = a.metadata
	}
	if c.opts.UseFilenameHint {
		req.FilenameHint = strings.TrimSuffix(base, ext)
	}

	built, err := c.deps.Prompts.Build(req)
	if err != nil {
		return a.finish(OutcomeError, "prompt assembly failed", err)
	}
	a.nameCtx.PromptLength = len([]rune(built.Prompt))
	a.nameCtx.PromptPreview = model.Preview(built.Prompt, model.PromptPreviewLength)
	a.nameCtx.ContentTruncated = built.ContentTruncated
	a.nameCtx.PromptTrimmed = built.PromptTrimmed

	reply, err := c.deps.Model.Generate(ctx, llm.Request{
		System: SystemPrompt,
		Prompt: built.Prompt,
		Images: a.content.Images,
	})
	if err != nil {
		if !errors.Is(err, common.ErrModelInvocation) {
			err = fmt.Errorf("%w: %w", common.ErrModelInvocation, err)
		}
		return a.finish(OutcomeError, "model invocation failed", fmt.Errorf("%s: %w", a.path, err))
	}
	a.nameCtx.ResponsePreview = model.Preview(reply, model.ResponsePreviewLength)

	var tags []string
	if c.opts.AppendTags {
		tags = a.tags
	}
	resolution := resolver.Resolve(reply, resolver.Options{
		Metadata:     a.metadata,
		CaseStyle:    c.opts.Case,
		Tags:         tags,
		CharLimit:    c.opts.Chars,
		PitchDeck:    a.pitchDeck,
		DateFallback: c.opts.DateFallback,
	})

	a.nameCtx.Strategy = string(resolution.Strategy)
	a.nameCtx.UsedFallback = resolution.UsedFallback
	a.nameCtx.Truncated = resolution.Truncated
	a.nameCtx.AppendedTags = resolution.AppendedTags
	a.nameCtx.UsedTags = len(resolution.AppendedTags) > 0
	a.nameCtx.FallbackDate = resolution.AppendedDate
	a.nameCtx.UsedFallbackDate = resolution.AppendedDate != ""

	if resolution.Skipped {
		a.nameCtx.PitchDeckSkip = true
		return a.finish(OutcomeSkipped, ReasonPitchDeckSkip, nil)
	}

	newBase := resolution.Name + strings.ToLower(ext)
	a.nameCtx.FinalName = newBase
	if newBase == base {
		return a.finish(OutcomeSkipped, ReasonUnchanged, nil)
	}

	requested := filepath.Join(filepath.Dir(a.abs), newBase)
	if c.opts.DryRun {
		a.result.NewPath = requested
		return a.finish(OutcomeSkipped, ReasonDryRun, nil)
	}

	a.target = c.deps.Collisions.Resolve(a.abs, requested, caseconv.Separator(c.opts.Case))
	a.result.NewPath = a.target
	if a.target != requested {
		a.nameCtx.FinalName = filepath.Base(a.target)
	}
	return stateConfirm
}

func (c *Coordinator) confirm(ctx context.Context, a *attempt) state {
	question := fmt.Sprintf("Rename %s?", cli.FormatRename(filepath.Base(a.abs), filepath.Base(a.target)))
	decision, err := c.deps.Confirmer.Confirm(ctx, question)
	if err != nil {
		c.deps.Collisions.Release(a.abs, a.target)
		return a.finish(OutcomeError, "confirmation failed", err)
	}
	a.decision = decision
	if !decision.Approved {
		c.deps.Collisions.Release(a.abs, a.target)
		reason := "declined"
		if decision.Cause != nil {
			reason = decision.Cause.Error()
		}
		return a.finish(OutcomeSkipped, reason, nil)
	}
	return stateApply
}

func (c *Coordinator) apply(a *attempt) state {
	if err := os.Rename(a.abs, a.target); err != nil {
		c.deps.Collisions.Release(a.abs, a.target)
		a.result.NewPath = ""
		return a.finish(OutcomeError, "rename failed", fmt.Errorf("failed to rename %s: %w", a.path, err))
	}
	return stateLog
}

func (c *Coordinator) appendLog(ctx context.Context, a *attempt) state {
	a.nameCtx.FinalName = filepath.Base(a.target)
	a.entry = c.buildEntry(a)

	if err := c.deps.Log.AppendRenameLog(context.WithoutCancel(ctx), a.entry); err != nil {
		return a.finish(OutcomeError, "rename applied but not logged",
			fmt.Errorf("%w: %s: %w (undo with: %s)", common.ErrLogAppend, a.path, err, a.entry.RevertCommand))
	}
	return a.finish(OutcomeRenamed, "", nil)
}

func (c *Coordinator) buildEntry(a *attempt) *model.RenameLogEntry {
	origRel := c.relative(a.abs)
	newRel := c.relative(a.target)

	return &model.RenameLogEntry{
		AcceptedAt:            c.now(),
		Metadata:              a.metadata,
		OriginalPath:          a.abs,
		NewPath:               a.target,
		OriginalRelativePath:  origRel,
		NewRelativePath:       newRel,
		OriginalName:          filepath.Base(a.abs),
		NewName:               filepath.Base(a.target),
		Confirmation:          a.decision.Source,
		RevertCommand:         model.RevertCommand(a.target, a.abs),
		RevertCommandRelative: model.RevertCommand(newRel, origRel),
		Tags:                  a.tags,
		Context:               a.nameCtx,
	}
}

func (c *Coordinator) relative(path string) string {
	rel, err := filepath.Rel(c.wd, path)
	if err != nil {
		return path
	}
	return rel
}
