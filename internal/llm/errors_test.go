package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsFatalAPIError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("connection reset"), false},
		{"credit balance", errors.New("insufficient credit balance"), true},
		{"quota exceeded", errors.New("quota exceeded for model"), true},
		{"billing issue", errors.New("billing account inactive"), true},
		{"invalid api key", errors.New("invalid api key"), true},
		{"authentication failed", errors.New("authentication failed"), true},
		{"unauthorized", errors.New("unauthorized request"), true},
		{"401 status", errors.New("HTTP 401: not allowed"), true},
		{"403 status", errors.New("HTTP 403: forbidden"), true},
		{"wrapped error", fmt.Errorf("generate: %w", errors.New("credit balance too low")), true},
		{"404 not fatal", errors.New("HTTP 404: not found"), false},
		{"timeout not fatal", errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isFatalAPIError(tt.err)
			if got != tt.fatal {
				t.Errorf("isFatalAPIError(%v) = %v, want %v", tt.err, got, tt.fatal)
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		limited bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("connection reset"), false},
		{"rate limit", errors.New("rate limit exceeded"), true},
		{"underscore form", errors.New("rate_limit_error"), true},
		{"429 status", errors.New("HTTP 429"), true},
		{"too many requests", errors.New("too many requests"), true},
		{"overloaded", errors.New("overloaded_error: try later"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isRateLimitError(tt.err)
			if got != tt.limited {
				t.Errorf("isRateLimitError(%v) = %v, want %v", tt.err, got, tt.limited)
			}
		})
	}
}

func TestWrapFatalError(t *testing.T) {
	t.Run("wraps fatal error", func(t *testing.T) {
		err := errors.New("invalid api key provided")
		wrapped := wrapFatalError(err)
		if !errors.Is(wrapped, ErrFatalAPI) {
			t.Errorf("expected wrapped error to match ErrFatalAPI")
		}
	})

	t.Run("wraps rate limit error", func(t *testing.T) {
		err := errors.New("HTTP 429: too many requests")
		wrapped := wrapFatalError(err)
		if !errors.Is(wrapped, ErrRateLimited) {
			t.Errorf("expected wrapped error to match ErrRateLimited")
		}
	})

	t.Run("passes through non-fatal error", func(t *testing.T) {
		err := errors.New("connection refused")
		result := wrapFatalError(err)
		if errors.Is(result, ErrFatalAPI) || errors.Is(result, ErrRateLimited) {
			t.Errorf("plain error should not match any sentinel")
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if wrapFatalError(nil) != nil {
			t.Errorf("expected nil")
		}
	})
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(context.DeadlineExceeded) {
		t.Errorf("deadline exceeded should be a timeout")
	}
	if !IsTimeout(fmt.Errorf("attempt: %w", context.Canceled)) {
		t.Errorf("wrapped cancellation should be a timeout")
	}
	if IsTimeout(errors.New("boom")) {
		t.Errorf("plain error should not be a timeout")
	}
}

func TestParseClassification(t *testing.T) {
	labels := []string{"general", "inventory", "finance"}

	tests := []struct {
		name       string
		answer     string
		wantLabel  string
		wantMinMax [2]float64
	}{
		{"well formed", "inventory|0.85", "inventory", [2]float64{0.85, 0.85}},
		{"bare label", "finance", "finance", [2]float64{0.7, 0.7}},
		{"mixed case", "Inventory|0.9", "inventory", [2]float64{0.9, 0.9}},
		{"trailing explanation", "inventory|0.8\nBecause the customer asks about stock.", "inventory", [2]float64{0.8, 0.8}},
		{"unknown label", "weather|0.9", "general", [2]float64{0.3, 0.3}},
		{"empty answer", "", "general", [2]float64{0.3, 0.3}},
		{"confidence clamped", "finance|1.7", "finance", [2]float64{1.0, 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseClassification(tt.answer, labels)
			if got.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", got.Label, tt.wantLabel)
			}
			if got.Confidence < tt.wantMinMax[0] || got.Confidence > tt.wantMinMax[1] {
				t.Errorf("confidence = %v, want in [%v, %v]", got.Confidence, tt.wantMinMax[0], tt.wantMinMax[1])
			}
		})
	}
}
