package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/soochol/postplan/internal/repository"
)

// retryPolicy bounds how persistence calls are retried after transient
// database failures.
type retryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

var defaultRetry = retryPolicy{
	MaxRetries:    3,
	InitialDelay:  100 * time.Millisecond,
	MaxDelay:      2 * time.Second,
	BackoffFactor: 2,
}

// withRetry runs op until it succeeds, fails permanently, or the policy
// is exhausted.
func withRetry(ctx context.Context, policy retryPolicy, what string, op func() error) error {
	var err error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !isRetryable(err) || attempt >= policy.MaxRetries {
			return err
		}
		delay := calculateBackoff(policy, attempt)
		slog.Info("dispatcher: retrying", "op", what, "attempt", attempt+1, "delay", delay, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return err
}

// calculateBackoff computes the delay for a given attempt using exponential backoff.
func calculateBackoff(policy retryPolicy, attempt int) time.Duration {
	delay := float64(policy.InitialDelay) * math.Pow(policy.BackoffFactor, float64(attempt))
	if time.Duration(delay) > policy.MaxDelay {
		return policy.MaxDelay
	}
	return time.Duration(delay)
}

// isRetryable checks if an error looks like a transient storage failure.
func isRetryable(err error) bool {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	lower := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout", "deadline exceeded",
		"connection reset", "connection refused", "broken pipe", "eof",
		"too many connections", "could not serialize",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
