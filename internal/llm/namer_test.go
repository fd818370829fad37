package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/retitle/internal/common"
)

type scriptedClient struct {
	errs    []error
	reply   string
	lastReq Request
	calls   int
}

func (c *scriptedClient) Generate(_ context.Context, req Request) (string, error) {
	c.calls++
	c.lastReq = req
	if c.calls <= len(c.errs) {
		return "", c.errs[c.calls-1]
	}
	return c.reply, nil
}

func fastConfig() Config {
	return Config{MaxRetries: 3, RetryDelay: time.Millisecond, RateLimit: 6000}
}

func TestNamer_RetriesTransientFailures(t *testing.T) {
	client := &scriptedClient{
		errs:  []error{&common.RetryableError{Err: errors.New("502"), Retryable: true}},
		reply: "Beach Sunset",
	}
	n := NewNamerWithClient(client, fastConfig(), nil)

	reply, err := n.Generate(context.Background(), Request{Prompt: "p", Images: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "Beach Sunset", reply)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, []string{"x"}, client.lastReq.Images)
}

func TestNamer_PermanentFailure(t *testing.T) {
	client := &scriptedClient{
		errs: []error{&common.RetryableError{Err: errors.New("401"), Retryable: false}},
	}
	n := NewNamerWithClient(client, fastConfig(), nil)

	_, err := n.Generate(context.Background(), Request{Prompt: "p"})
	require.ErrorIs(t, err, common.ErrModelInvocation)
	assert.Equal(t, 1, client.calls)
}

func TestNamer_ExhaustsRetries(t *testing.T) {
	transient := &common.RetryableError{Err: errors.New("503"), Retryable: true}
	client := &scriptedClient{errs: []error{transient, transient, transient}}
	n := NewNamerWithClient(client, fastConfig(), nil)

	_, err := n.Generate(context.Background(), Request{Prompt: "p"})
	require.ErrorIs(t, err, common.ErrModelInvocation)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
	assert.Equal(t, 3, client.calls)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(60)
	rl.now = func() time.Time { return now }
	rl.lastRefill = now

	for i := 0; i < 60; i++ {
		_, ok := rl.reserve()
		require.True(t, ok, "token %d", i)
	}

	delay, ok := rl.reserve()
	assert.False(t, ok)
	assert.InDelta(t, time.Second, delay, float64(10*time.Millisecond))

	now = now.Add(2 * time.Second)
	_, ok = rl.reserve()
	assert.True(t, ok)
}

func TestRateLimiter_WaitCanceled(t *testing.T) {
	rl := newRateLimiter(1)
	_, ok := rl.reserve()
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, rl.wait(ctx), context.Canceled)
}
