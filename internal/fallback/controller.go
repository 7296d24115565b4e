// Package fallback wraps the primary generation path with timeout-bounded
// retries and a secondary-path fallback.
package fallback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/driveline/driveline-go/internal/llm"
	"github.com/driveline/driveline-go/internal/metrics"
	"github.com/driveline/driveline-go/internal/models"
)

// SafeDefaultMessage is the hard-coded customer-safe reply used when both
// generation paths fail.
const SafeDefaultMessage = "I'm sorry, I'm having trouble answering right now. " +
	"Please try again in a moment, or call the dealership directly and a team member will help you."

// Generator is a text-generation backend.
type Generator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Ready() bool
}

// Request is one generation request.
type Request struct {
	// Message is the raw customer text, used by the primary-path heuristic.
	Message string
	// SystemPrompt and UserPrompt feed the generation backends.
	SystemPrompt string
	UserPrompt   string
}

// Options configures the controller.
type Options struct {
	// HybridEnabled gates the primary path entirely.
	HybridEnabled bool
	// PrimaryTimeout bounds each primary attempt.
	PrimaryTimeout time.Duration
	// MaxRetries is the maximum number of primary attempts.
	MaxRetries int
	// Preference lists keywords that make a request worth the primary
	// path's latency (inventory, pricing, availability...).
	Preference []string
}

// Controller races the primary path against a timeout, retries transient
// failures with exponential backoff, and falls back to the secondary path.
// GenerateResponse never returns an error.
type Controller struct {
	primary   Generator
	secondary Generator
	collector *metrics.Collector
	logger    *slog.Logger
	opts      Options

	// sleep is replaceable in tests. It must honor context cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewController creates a fallback controller.
func NewController(primary, secondary Generator, collector *metrics.Collector, logger *slog.Logger, opts Options) *Controller {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.PrimaryTimeout <= 0 {
		opts.PrimaryTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		primary:   primary,
		secondary: secondary,
		collector: collector,
		logger:    logger,
		opts:      opts,
		sleep:     sleepCtx,
	}
}

// attemptState is the explicit retry state threaded through the loop.
type attemptState struct {
	attempt int
	started time.Time
	lastErr error
	reason  string
	abandon bool // timeout or rate limit: no further retries
}

// GenerateResponse produces one uniform response envelope regardless of
// which path answered. It never returns an error and never panics outward.
func (c *Controller) GenerateResponse(ctx context.Context, req Request) (envelope models.ResponseEnvelope) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("generation panicked", "panic", rec)
			envelope = c.errorEnvelope(start, fmt.Sprintf("panic: %v", rec))
		}
		envelope.Timing.TotalMs = time.Since(start).Milliseconds()
		if c.collector != nil {
			c.collector.RecordTiming(metrics.OpGenerate, time.Since(start))
		}
	}()

	if c.usePrimary(req) {
		state := attemptState{started: start}
		for state.attempt < c.opts.MaxRetries {
			if ctx.Err() != nil {
				state.reason = "cancelled"
				break
			}

			content, err := c.attemptPrimary(ctx, req)
			if err == nil {
				return models.ResponseEnvelope{
					Success:    true,
					Content:    content,
					Confidence: 1.0,
					Timing: models.TimingMetrics{
						PrimaryMs: time.Since(start).Milliseconds(),
						Attempts:  state.attempt + 1,
					},
				}
			}

			state.attempt++
			state.lastErr = err

			switch {
			case llm.IsTimeout(err):
				// Abandon, don't block: the underlying call may still be
				// running, but we stop waiting for it.
				state.reason = "primary timeout"
				state.abandon = true
				if c.collector != nil {
					c.collector.Increment(metrics.CounterPrimaryTimeout, nil)
				}
			case llm.IsRateLimited(err):
				state.reason = "primary rate limited"
				state.abandon = true
			default:
				state.reason = "primary failed"
			}

			if state.abandon {
				break
			}

			delay := time.Duration(1<<(state.attempt-1)) * time.Second
			c.logger.Warn("primary attempt failed, backing off",
				"attempt", state.attempt,
				"backoff", delay,
				"error", err)
			if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
				state.reason = "cancelled"
				break
			}
		}

		c.logger.Warn("primary path exhausted, falling back",
			"attempts", state.attempt,
			"reason", state.reason,
			"error", state.lastErr)

		return c.fallbackEnvelope(ctx, req, start, state)
	}

	// No primary path: route straight to the secondary.
	return c.fallbackEnvelope(ctx, req, start, attemptState{started: start, reason: "primary path skipped"})
}

// usePrimary applies the primary-path gate: hybrid mode on, backend ready,
// and the request classified as worth the primary path's latency.
func (c *Controller) usePrimary(req Request) bool {
	if !c.opts.HybridEnabled || c.primary == nil || !c.primary.Ready() {
		return false
	}
	return c.matchesPreference(req.Message)
}

func (c *Controller) matchesPreference(message string) bool {
	if len(c.opts.Preference) == 0 {
		return true
	}
	lower := strings.ToLower(message)
	for _, kw := range c.opts.Preference {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// attemptPrimary races one primary call against the configured timeout.
// On timeout the attempt counts as failed even though the underlying call
// cannot be forcibly cancelled; the loser is ignored, not awaited.
func (c *Controller) attemptPrimary(ctx context.Context, req Request) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.PrimaryTimeout)
	defer cancel()

	type outcome struct {
		content string
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		content, err := c.primary.GenerateWithSystem(attemptCtx, req.SystemPrompt, req.UserPrompt)
		done <- outcome{content, err}
	}()

	select {
	case out := <-done:
		return out.content, out.err
	case <-attemptCtx.Done():
		return "", fmt.Errorf("primary attempt: %w", attemptCtx.Err())
	}
}

func (c *Controller) fallbackEnvelope(ctx context.Context, req Request, start time.Time, state attemptState) models.ResponseEnvelope {
	if c.collector != nil {
		c.collector.Increment(metrics.CounterFallbackUsed, nil)
	}

	primaryMs := int64(0)
	if state.attempt > 0 {
		primaryMs = time.Since(start).Milliseconds()
	}

	fallbackStart := time.Now()
	if c.secondary != nil && ctx.Err() == nil {
		content, err := c.secondary.GenerateWithSystem(ctx, req.SystemPrompt, req.UserPrompt)
		if err == nil {
			return models.ResponseEnvelope{
				Success:        true,
				Content:        content,
				Confidence:     0.8,
				UsedFallback:   true,
				FallbackReason: state.reason,
				Timing: models.TimingMetrics{
					PrimaryMs:  primaryMs,
					FallbackMs: time.Since(fallbackStart).Milliseconds(),
					Attempts:   state.attempt,
				},
			}
		}
		c.logger.Error("secondary path failed", "error", err)
		state.lastErr = err
	}

	env := c.errorEnvelope(start, state.reason)
	env.Timing.PrimaryMs = primaryMs
	env.Timing.FallbackMs = time.Since(fallbackStart).Milliseconds()
	env.Timing.Attempts = state.attempt
	if state.lastErr != nil {
		env.Errors = append(env.Errors, state.lastErr.Error())
	}
	return env
}

// errorEnvelope is the terminal failure of both paths: success=false with a
// customer-safe message.
func (c *Controller) errorEnvelope(start time.Time, reason string) models.ResponseEnvelope {
	return models.ResponseEnvelope{
		Success:        false,
		Content:        SafeDefaultMessage,
		UsedFallback:   true,
		FallbackReason: reason,
		Timing: models.TimingMetrics{
			TotalMs: time.Since(start).Milliseconds(),
		},
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
