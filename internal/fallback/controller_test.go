package fallback

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveline/driveline-go/internal/llm"
	"github.com/driveline/driveline-go/internal/metrics"
)

type fakeGenerator struct {
	content string
	errs    []error // consumed per call; nil entry means success
	calls   atomic.Int32
	ready   bool
	block   chan struct{} // if set, the call blocks until closed
}

func (f *fakeGenerator) GenerateWithSystem(ctx context.Context, _, _ string) (string, error) {
	n := int(f.calls.Add(1)) - 1
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if n < len(f.errs) && f.errs[n] != nil {
		return "", f.errs[n]
	}
	return f.content, nil
}

func (f *fakeGenerator) Ready() bool { return f.ready }

// recordingSleep captures backoff delays without actually sleeping.
func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func newController(primary, secondary Generator, opts Options) (*Controller, *[]time.Duration) {
	c := NewController(primary, secondary, metrics.NewCollector(), nil, opts)
	delays := &[]time.Duration{}
	c.sleep = recordingSleep(delays)
	return c, delays
}

var inventoryOpts = Options{
	HybridEnabled:  true,
	PrimaryTimeout: 100 * time.Millisecond,
	MaxRetries:     3,
	Preference:     []string{"inventory", "pricing", "availability"},
}

func TestGenerateResponsePrimarySuccess(t *testing.T) {
	primary := &fakeGenerator{content: "primary answer", ready: true}
	secondary := &fakeGenerator{content: "secondary answer", ready: true}
	c, _ := newController(primary, secondary, inventoryOpts)

	env := c.GenerateResponse(context.Background(), Request{Message: "inventory question"})

	assert.True(t, env.Success)
	assert.Equal(t, "primary answer", env.Content)
	assert.False(t, env.UsedFallback)
	assert.Empty(t, env.FallbackReason)
	assert.Equal(t, 1, env.Timing.Attempts)
	assert.Equal(t, int32(0), secondary.calls.Load())
}

func TestGenerateResponseRetryBackoffThenFallback(t *testing.T) {
	boom := errors.New("connection reset")
	primary := &fakeGenerator{ready: true, errs: []error{boom, boom, boom}}
	secondary := &fakeGenerator{content: "secondary answer", ready: true}
	c, delays := newController(primary, secondary, inventoryOpts)

	env := c.GenerateResponse(context.Background(), Request{Message: "pricing question"})

	assert.Equal(t, int32(3), primary.calls.Load(), "exactly maxRetries primary attempts")
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, *delays)
	assert.True(t, env.Success)
	assert.True(t, env.UsedFallback)
	assert.Equal(t, "secondary answer", env.Content)
	assert.Equal(t, "primary failed", env.FallbackReason)
	assert.Equal(t, 3, env.Timing.Attempts)
}

func TestGenerateResponseTimeoutFallsBackImmediately(t *testing.T) {
	primary := &fakeGenerator{ready: true, block: make(chan struct{})}
	secondary := &fakeGenerator{content: "secondary answer", ready: true}
	opts := inventoryOpts
	opts.PrimaryTimeout = 20 * time.Millisecond
	c, delays := newController(primary, secondary, opts)

	start := time.Now()
	env := c.GenerateResponse(context.Background(), Request{Message: "availability question"})
	elapsed := time.Since(start)

	assert.Equal(t, int32(1), primary.calls.Load(), "no retries after timeout")
	assert.Empty(t, *delays, "no backoff after timeout")
	assert.True(t, env.Success)
	assert.True(t, env.UsedFallback)
	assert.Equal(t, "primary timeout", env.FallbackReason)
	assert.NotEmpty(t, env.Content)
	assert.Less(t, elapsed, 2*time.Second, "abandon, don't block, on timeout")
}

func TestGenerateResponseRateLimitFallsBackImmediately(t *testing.T) {
	limited := fmt.Errorf("generate: %w", llm.ErrRateLimited)
	primary := &fakeGenerator{ready: true, errs: []error{limited}}
	secondary := &fakeGenerator{content: "secondary answer", ready: true}
	c, delays := newController(primary, secondary, inventoryOpts)

	env := c.GenerateResponse(context.Background(), Request{Message: "inventory question"})

	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Empty(t, *delays)
	assert.True(t, env.UsedFallback)
	assert.Equal(t, "primary rate limited", env.FallbackReason)
}

func TestGenerateResponseSkipsPrimaryWhenHeuristicMisses(t *testing.T) {
	primary := &fakeGenerator{content: "primary answer", ready: true}
	secondary := &fakeGenerator{content: "secondary answer", ready: true}
	c, _ := newController(primary, secondary, inventoryOpts)

	env := c.GenerateResponse(context.Background(), Request{Message: "tell me a joke"})

	assert.Equal(t, int32(0), primary.calls.Load(), "non-preferred request skips primary")
	assert.True(t, env.UsedFallback)
	assert.Equal(t, "secondary answer", env.Content)
}

func TestGenerateResponseSkipsPrimaryWhenHybridDisabled(t *testing.T) {
	primary := &fakeGenerator{content: "primary answer", ready: true}
	secondary := &fakeGenerator{content: "secondary answer", ready: true}
	opts := inventoryOpts
	opts.HybridEnabled = false
	c, _ := newController(primary, secondary, opts)

	env := c.GenerateResponse(context.Background(), Request{Message: "inventory question"})

	assert.Equal(t, int32(0), primary.calls.Load())
	assert.True(t, env.UsedFallback)
	assert.True(t, env.Success)
}

func TestGenerateResponseSkipsPrimaryWhenNotReady(t *testing.T) {
	primary := &fakeGenerator{content: "primary answer", ready: false}
	secondary := &fakeGenerator{content: "secondary answer", ready: true}
	c, _ := newController(primary, secondary, inventoryOpts)

	env := c.GenerateResponse(context.Background(), Request{Message: "inventory question"})

	assert.Equal(t, int32(0), primary.calls.Load())
	assert.True(t, env.Success)
}

func TestGenerateResponseBothPathsFail(t *testing.T) {
	boom := errors.New("down")
	primary := &fakeGenerator{ready: true, errs: []error{boom, boom, boom}}
	secondary := &fakeGenerator{ready: true, errs: []error{boom}}
	c, _ := newController(primary, secondary, inventoryOpts)

	env := c.GenerateResponse(context.Background(), Request{Message: "inventory question"})

	require.False(t, env.Success)
	assert.Equal(t, SafeDefaultMessage, env.Content, "terminal failure still carries a user-displayable message")
	assert.NotEmpty(t, env.Errors)
	assert.NotEmpty(t, env.FallbackReason)
}

func TestGenerateResponseCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &fakeGenerator{content: "primary answer", ready: true}
	secondary := &fakeGenerator{content: "secondary answer", ready: true}
	c, _ := newController(primary, secondary, inventoryOpts)

	env := c.GenerateResponse(ctx, Request{Message: "inventory question"})

	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Content, "even cancellation yields a usable message")
}

func TestMatchesPreference(t *testing.T) {
	c, _ := newController(nil, nil, inventoryOpts)

	tests := []struct {
		message string
		want    bool
	}{
		{"what inventory do you have", true},
		{"PRICING for the rav4", true},
		{"hello there", false},
	}
	for _, tt := range tests {
		if got := c.matchesPreference(tt.message); got != tt.want {
			t.Errorf("matchesPreference(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}

	c2, _ := newController(nil, nil, Options{HybridEnabled: true})
	if !c2.matchesPreference("anything") {
		t.Errorf("empty preference list should match everything")
	}
}
