package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// Summary counts outcomes of a run. Results are in input order.
type Summary struct {
	Results     []Result
	Total       int
	Renamed     int
	Skipped     int
	Unsupported int
	NoContent   int
	Errors      int
}

func (s *Summary) record(res Result) {
	switch res.Outcome {
	case OutcomeRenamed:
		s.Renamed++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeUnsupported:
		s.Unsupported++
	case OutcomeNoContent:
		s.NoContent++
	default:
		s.Errors++
	}
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// OnResult is called once per file, never concurrently.
	OnResult func(Result)
	// Progress receives the progress bar. No bar is drawn when nil.
	Progress    io.Writer
	Logger      *slog.Logger
	Concurrency int
}

// Runner processes many files with a bounded worker pool.
type Runner struct {
	processor   Processor
	onResult    func(Result)
	progress    io.Writer
	logger      *slog.Logger
	concurrency int
}

// NewRunner creates a Runner around processor.
func NewRunner(processor Processor, cfg RunnerConfig) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{
		processor:   processor,
		onResult:    cfg.OnResult,
		progress:    cfg.Progress,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
	}
}

// Run processes paths and returns per-outcome counts. A failing file never
// stops the others; the returned error is set only when ctx is canceled.
func (r *Runner) Run(ctx context.Context, paths []string) (Summary, error) {
	summary := Summary{
		Total:   len(paths),
		Results: make([]Result, len(paths)),
	}
	if len(paths) == 0 {
		return summary, nil
	}

	bar := r.newProgressBar(len(paths))

	var (
		mu   sync.Mutex
		done = make([]bool, len(paths))
	)

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := r.processor.Process(ctx, path)

			mu.Lock()
			defer mu.Unlock()

			summary.Results[i] = res
			done[i] = true
			summary.record(res)
			if res.Outcome == OutcomeError {
				r.logger.Warn("File failed", "path", path, "error", res.Err)
			}
			if r.onResult != nil {
				r.onResult(res)
			}
			if bar != nil {
				if err := bar.Add(1); err != nil {
					r.logger.Warn("Failed to update progress bar", "error", err)
				}
			}
			return nil
		})
	}

	_ = g.Wait()

	if bar != nil {
		_ = bar.Finish()
	}

	if err := ctx.Err(); err != nil {
		// Files never started are dropped from the results.
		kept := summary.Results[:0]
		for i, res := range summary.Results {
			if done[i] {
				kept = append(kept, res)
			}
		}
		summary.Results = kept
		return summary, fmt.Errorf("run interrupted after %d of %d files: %w", len(kept), len(paths), err)
	}
	return summary, nil
}

func (r *Runner) newProgressBar(total int) *progressbar.ProgressBar {
	if r.progress == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Renaming files...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(r.progress); err != nil {
				r.logger.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
