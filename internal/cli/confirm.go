package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/Veraticus/retitle/internal/common"
	"github.com/Veraticus/retitle/internal/model"
)

// Decision is the outcome of a confirmation request.
type Decision struct {
	// Cause is common.ErrConfirmationDeclined or common.ErrNonInteractive
	// when the rename was not approved.
	Cause    error
	Source   model.ConfirmationSource
	Approved bool
}

// ConfirmConfig configures a ConfirmGate.
type ConfirmConfig struct {
	In          io.Reader
	Out         io.Writer
	Interactive func() bool
	Force       bool
}

// ConfirmGate asks the user to approve each rename.
type ConfirmGate struct {
	reader      *LineReader
	out         io.Writer
	interactive func() bool
	force       bool
	mu          sync.Mutex
}

// NewConfirmGate creates a gate. When Interactive is nil, the gate treats
// the input as interactive only if it is a terminal.
func NewConfirmGate(cfg ConfirmConfig) *ConfirmGate {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Interactive == nil {
		in := cfg.In
		cfg.Interactive = func() bool { return IsTerminal(in) }
	}
	return &ConfirmGate{
		reader:      NewLineReader(cfg.In),
		out:         cfg.Out,
		interactive: cfg.Interactive,
		force:       cfg.Force,
	}
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Forced reports whether confirmation is bypassed.
func (g *ConfirmGate) Forced() bool {
	return g.force
}

// Interactive reports whether the gate can prompt.
func (g *ConfirmGate) Interactive() bool {
	return g.interactive()
}

// Confirm asks question and waits for a yes/no answer. Only "y" or "yes"
// approves. Prompts from concurrent callers are serialized.
func (g *ConfirmGate) Confirm(ctx context.Context, question string) (Decision, error) {
	if g.force {
		return Decision{Approved: true, Source: model.ConfirmedByForce}, nil
	}

	if !g.interactive() {
		g.printf("%s\n", FormatWarning("No interactive terminal, skipping. Re-run with --force to rename without confirmation."))
		return Decision{Cause: common.ErrNonInteractive}, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.printf("%s %s ", question, FormatPrompt("[y/N]"))
	answer, err := g.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			g.printf("\n")
			return Decision{Cause: common.ErrConfirmationDeclined}, nil
		}
		return Decision{}, err
	}

	if IsAffirmative(answer) {
		return Decision{Approved: true, Source: model.ConfirmedByUser}, nil
	}
	return Decision{Cause: common.ErrConfirmationDeclined}, nil
}

func (g *ConfirmGate) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(g.out, format, args...)
}

// IsAffirmative reports whether answer is an explicit yes.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
