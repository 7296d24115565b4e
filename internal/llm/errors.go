package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for provider failures. Use errors.Is() to check.
var (
	// ErrFatalAPI marks provider errors that retrying cannot fix:
	// bad credentials, exhausted quota, billing problems.
	ErrFatalAPI = errors.New("fatal API error")

	// ErrRateLimited marks provider rate-limit responses. The fallback
	// controller skips retries and goes straight to the secondary path.
	ErrRateLimited = errors.New("rate limited")
)

var fatalPatterns = []string{
	"credit balance",
	"quota exceeded",
	"billing",
	"invalid api key",
	"authentication failed",
	"unauthorized",
	"401",
	"403",
}

var rateLimitPatterns = []string{
	"rate limit",
	"rate_limit",
	"too many requests",
	"429",
	"overloaded",
}

// isFatalAPIError reports whether the error indicates a non-retryable
// provider problem.
func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range fatalPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// isRateLimitError reports whether the error indicates provider throttling.
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range rateLimitPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// wrapFatalError wraps provider errors with the matching sentinel so callers
// can branch with errors.Is. Non-matching errors pass through unchanged.
func wrapFatalError(err error) error {
	if err == nil {
		return nil
	}
	if isRateLimitError(err) {
		return fmt.Errorf("%w: %s", ErrRateLimited, err.Error())
	}
	if isFatalAPIError(err) {
		return fmt.Errorf("%w: %s", ErrFatalAPI, err.Error())
	}
	return err
}

// IsRateLimited reports whether err carries a rate-limit signal.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout reports whether err is a deadline or cancellation outcome.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
