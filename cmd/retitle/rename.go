package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/retitle/internal/cli"
	"github.com/Veraticus/retitle/internal/common"
	"github.com/Veraticus/retitle/internal/config"
	"github.com/Veraticus/retitle/internal/content"
	"github.com/Veraticus/retitle/internal/engine"
)

func renameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <path>...",
		Short: "Propose and apply content-based names",
		Long: `Rename asks the configured model for a name for every file under the given
paths. Each rename is confirmed interactively unless --force is set, and every
applied rename is written to the rename log so it can be reverted.`,
		Example: `  # Rename a folder of screenshots in snake_case
  retitle rename ~/Desktop/screenshots --case snakeCase

  # Preview names for pitch decks without touching anything
  retitle rename ~/Decks --pitch-deck --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRename,
	}

	// Model flags
	cmd.Flags().String("provider", "", "model provider (ollama, openai, anthropic, claudecode)")
	cmd.Flags().String("model", "", "model name")
	cmd.Flags().String("base-url", "", "model API base URL")
	cmd.Flags().String("api-key", "", "model API key")

	// Naming flags
	cmd.Flags().String("case", "", "case style of the new name")
	cmd.Flags().Int("chars", config.DefaultChars, "maximum characters in the new name")
	cmd.Flags().String("language", config.DefaultLanguage, "language of the new name")
	cmd.Flags().Int("frames", config.DefaultFrames, "frames sampled from each video")
	cmd.Flags().String("custom-prompt", "", "extra instructions for the model")
	cmd.Flags().Bool("filename-hint", false, "include the current filename in the prompt")
	cmd.Flags().Bool("metadata", true, "include file metadata in the prompt")
	cmd.Flags().Bool("date-fallback", false, "append the file date when the name has no year")
	cmd.Flags().Bool("tags", false, "append Finder tags to the name")
	cmd.Flags().Bool("pitch-deck", false, "detect pitch decks and name them by company")
	cmd.Flags().String("pitch-deck-focus", "", "what a pitch deck name should emphasize")

	// Run flags
	cmd.Flags().BoolP("include-subdirectories", "r", false, "descend into subdirectories")
	cmd.Flags().BoolP("force", "f", false, "apply renames without confirmation")
	cmd.Flags().BoolP("dry-run", "n", false, "show proposed names without renaming")
	cmd.Flags().Int("content-limit", config.DefaultContentLimit, "maximum characters of file content in a prompt")
	cmd.Flags().Int("prompt-limit", config.DefaultPromptLimit, "maximum characters of a whole prompt")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency(), "files processed in parallel when not prompting")

	bindings := map[string]string{
		"provider":               "llm.provider",
		"model":                  "llm.model",
		"base-url":               "llm.base_url",
		"api-key":                "llm.api_key",
		"case":                   config.KeyCase,
		"chars":                  config.KeyChars,
		"language":               config.KeyLanguage,
		"frames":                 config.KeyFrames,
		"custom-prompt":          config.KeyCustomPrompt,
		"filename-hint":          config.KeyFilenameHint,
		"metadata":               config.KeyMetadata,
		"date-fallback":          config.KeyDateFallback,
		"tags":                   config.KeyTags,
		"pitch-deck":             config.KeyPitchDeck,
		"pitch-deck-focus":       config.KeyPitchDeckFocus,
		"include-subdirectories": config.KeyIncludeSubdirectories,
		"force":                  config.KeyForce,
		"dry-run":                config.KeyDryRun,
		"content-limit":          config.KeyContentLimit,
		"prompt-limit":           config.KeyPromptLimit,
		"concurrency":            config.KeyConcurrency,
	}
	for flag, key := range bindings {
		_ = viper.BindPFlag(key, cmd.Flags().Lookup(flag))
	}

	return cmd
}

func runRename(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts, err := config.LoadOptions(viper.GetViper())
	if err != nil {
		return err
	}

	paths, err := discoverAll(args, opts.IncludeSubdirectories)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No files to rename"))
		return nil
	}

	namer, err := createNamer()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			common.LogError(err, "Failed to close rename log", common.Fields{"path": store.Path()})
		}
	}()

	out := cmd.OutOrStdout()
	gate := cli.NewConfirmGate(cli.ConfirmConfig{
		In:    cmd.InOrStdin(),
		Out:   out,
		Force: opts.Force,
	})

	coordinator, err := engine.NewCoordinator(engine.Deps{
		Content: content.NewSource(content.Config{
			Logger:       slog.Default(),
			Frames:       opts.Frames,
			MaxTextBytes: maxTextBytes(opts),
		}),
		Metadata:  content.MetadataProber{},
		Tags:      content.NewTagReader(),
		Model:     namer,
		Confirmer: gate,
		Log:       store,
	}, engine.Config{
		Logger:  slog.Default(),
		Options: opts,
	})
	if err != nil {
		return err
	}

	// Prompts and a progress bar cannot share the terminal, and prompts must
	// come one at a time.
	prompting := !opts.Force && !opts.DryRun && gate.Interactive()
	concurrency := opts.Concurrency
	var progress io.Writer
	if prompting {
		concurrency = 1
	} else if cli.IsTerminal(os.Stderr) {
		progress = os.Stderr
	}

	printer := &resultPrinter{out: out, dryRun: opts.DryRun}
	runner := engine.NewRunner(coordinator, engine.RunnerConfig{
		OnResult:    printer.print,
		Progress:    progress,
		Logger:      slog.Default(),
		Concurrency: concurrency,
	})

	common.LogInfo("Starting rename run", common.Fields{
		"files":       len(paths),
		"concurrency": concurrency,
		"dry_run":     opts.DryRun,
		"force":       opts.Force,
	})

	summary, runErr := runner.Run(ctx, paths)
	printSummary(out, summary, opts.DryRun)

	if runErr != nil {
		return runErr
	}
	if summary.Errors > 0 {
		return fmt.Errorf("%s failed", pluralFiles(summary.Errors))
	}
	return nil
}

// maxTextBytes reads at least enough of a text file to fill the classifier
// scan window with four-byte runes.
func maxTextBytes(opts config.Options) int64 {
	return max(content.DefaultMaxTextBytes, int64(opts.ClassifierScanLimit)*utf8.UTFMax)
}

// discoverAll expands every argument into files, dropping duplicates.
func discoverAll(args []string, recursive bool) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, arg := range args {
		found, err := engine.Discover(config.ExpandPath(arg), recursive)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			abs, err := filepath.Abs(p)
			if err != nil {
				abs = p
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true
			paths = append(paths, p)
		}
	}
	return paths, nil
}

type resultPrinter struct {
	out    io.Writer
	dryRun bool
}

func (p *resultPrinter) print(res engine.Result) {
	name := filepath.Base(res.Path)

	var line string
	switch res.Outcome {
	case engine.OutcomeRenamed:
		line = cli.FormatSuccess(cli.FormatRename(name, filepath.Base(res.NewPath)))
	case engine.OutcomeSkipped:
		if res.Reason == engine.ReasonDryRun && res.NewPath != "" {
			line = cli.FormatInfo(cli.FormatRename(name, filepath.Base(res.NewPath)))
		} else {
			line = cli.FormatSkip(fmt.Sprintf("%s: %s", name, reasonOrError(res)))
		}
	case engine.OutcomeUnsupported, engine.OutcomeNoContent:
		line = cli.FormatSkip(fmt.Sprintf("%s: %s", name, reasonOrError(res)))
	default:
		line = cli.FormatError(fmt.Sprintf("%s: %v", name, res.Err))
	}
	fmt.Fprintln(p.out, line)

	if res.CleanupErr != nil {
		common.LogWarn("Failed to remove scratch files", common.Fields{"path": res.Path, "error": res.CleanupErr})
	}
}

func reasonOrError(res engine.Result) string {
	if res.Reason != "" {
		return res.Reason
	}
	if res.Err != nil {
		return res.Err.Error()
	}
	return string(res.Outcome)
}

type summaryRow struct {
	label string
	count int
}

func printSummary(w io.Writer, s engine.Summary, dryRun bool) {
	if s.Total == 0 {
		return
	}

	renamedLabel, renamed, skipped := "Renamed:", s.Renamed, s.Skipped
	if dryRun {
		renamedLabel = "Proposed:"
		for _, res := range s.Results {
			if res.Reason == engine.ReasonDryRun {
				renamed++
				skipped--
			}
		}
	}

	rows := []summaryRow{
		{renamedLabel, renamed},
		{"Skipped:", skipped},
		{"Unsupported:", s.Unsupported},
		{"No content:", s.NoContent},
		{"Errors:", s.Errors},
	}
	if processed := len(s.Results); processed < s.Total {
		rows = append(rows, summaryRow{"Not started:", s.Total - processed})
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%-12s %s", row.label, humanize.Comma(int64(row.count))))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderBox(pluralFiles(s.Total), strings.Join(lines, "\n")))
	if s.Renamed > 0 {
		fmt.Fprintln(w, cli.FormatInfo("Undo the last rename with: retitle revert latest"))
	}
}

func pluralFiles(n int) string {
	return humanize.Comma(int64(n)) + " " + plural(n, "file", "files")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
