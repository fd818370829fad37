package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/retitle/internal/common"
)

// errImagesUnsupported is returned when a text-only provider receives images.
var errImagesUnsupported = errors.New("provider does not accept images")

// claudeCodeClient implements the Client interface using the Claude Code CLI.
type claudeCodeClient struct {
	model    string
	cliPath  string
	timeout  time.Duration
	maxTurns int
}

func newClaudeCodeClient(cfg Config) (Client, error) {
	cliPath := cfg.ClaudeCodePath
	if cliPath == "" {
		cliPath = "claude"
	}

	if _, err := exec.LookPath(cliPath); err != nil {
		return nil, fmt.Errorf("%w: claude CLI not found at %s: ensure @anthropic-ai/claude-code is installed", common.ErrMissingConfig, cliPath)
	}

	model := cfg.Model
	if model == "" {
		model = "sonnet"
	}

	return &claudeCodeClient{
		model:    model,
		cliPath:  cliPath,
		timeout:  cfg.timeout(),
		maxTurns: 1,
	}, nil
}

// claudeCodeResponse is the --output-format json envelope.
type claudeCodeResponse struct {
	Type    string `json:"type"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// Generate runs the CLI in print mode. Images cannot be passed to it.
func (c *claudeCodeClient) Generate(ctx context.Context, req Request) (string, error) {
	if len(req.Images) > 0 {
		return "", &common.RetryableError{
			Err:       fmt.Errorf("claude code: %w; use the ollama, openai or anthropic provider for images and video", errImagesUnsupported),
			Retryable: false,
		}
	}

	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + prompt
	}

	args := []string{
		"-p", prompt,
		"--output-format", "json",
		"--model", c.model,
		"--max-turns", strconv.Itoa(c.maxTurns),
	}

	cmdCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cmdCtx, c.cliPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", fmt.Errorf("claude code error: %s", strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to execute claude: %w", err)
	}

	var response claudeCodeResponse
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		// Older CLI versions print plain text.
		return cleanReply(stdout.String()), nil
	}
	if response.IsError {
		return "", fmt.Errorf("claude code error in response: %s", response.Result)
	}

	return cleanReply(response.Result), nil
}
