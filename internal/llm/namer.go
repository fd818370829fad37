package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/retitle/internal/common"
	"github.com/Veraticus/retitle/internal/service"
)

// Namer calls a model client with rate limiting and retries.
type Namer struct {
	client      Client
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewNamer creates a Namer for the configured provider.
func NewNamer(cfg Config, logger *slog.Logger) (*Namer, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return NewNamerWithClient(client, cfg, logger), nil
}

// NewNamerWithClient wraps an existing client.
func NewNamerWithClient(client Client, cfg Config, logger *slog.Logger) *Namer {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Namer{
		client:      client,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// Generate returns the model's raw reply to req.
func (n *Namer) Generate(ctx context.Context, req Request) (string, error) {
	var reply string

	err := common.WithRetry(ctx, func() error {
		if err := n.rateLimiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}

		start := time.Now()
		out, err := n.client.Generate(ctx, req)
		if err != nil {
			return err
		}

		n.logger.Debug("model replied",
			"images", len(req.Images),
			"prompt_length", len(req.Prompt),
			"reply_length", len(out),
			"duration", time.Since(start))
		reply = out
		return nil
	}, n.retryOpts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrModelInvocation, err)
	}

	return reply, nil
}
