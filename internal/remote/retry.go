package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
)

// RetryConfig defines the parameters for the exponential backoff and retry mechanism.
// It allows fine-tuning of how aggressive the host should be when the remote
// signals are flaky.
type RetryConfig struct {
	// MaxRetries is the maximum number of additional attempts after the initial failure.
	// For example, if MaxRetries is 3, the operation runs at most 4 times (1 initial + 3 retries).
	MaxRetries int

	// BaseDelay is the initial wait time before the first retry.
	// This duration increases exponentially with each attempt (BaseDelay * 2^attempt).
	BaseDelay time.Duration

	// MaxDelay is the hard limit for the sleep duration between retries.
	MaxDelay time.Duration

	// OperationTimeout is the total time limit for the entire operation, including all retries.
	// Zero means the caller's context is the only limit.
	OperationTimeout time.Duration
}

// isRetryable determines if an error is transient and warrants a retry.
// Decode errors are permanent: the same payload will be served again.
// HTTP client errors are permanent too, except 408 and 429.
func isRetryable(err error) bool {
	if errors.Is(err, ErrDecode) {
		return false
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
		switch fetchErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusRequestTimeout:
			return true
		}
		return fetchErr.StatusCode >= 500
	}

	// DNS failure, connection reset, timeouts: assume transient.
	return true
}

// ExecuteAction wraps a function with retry logic, including exponential backoff,
// jitter, and context timeouts.
//
// opName is used for logging and debugging purposes.
// operation is the function to execute; it must accept a context to support cancellation.
func ExecuteAction(ctx context.Context, cfg RetryConfig, opName string, operation func(ctx context.Context) error) error {
	if cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.OperationTimeout)
		defer cancel()
	}

	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		// Stop immediately if the context is cancelled or timed out.
		if ctx.Err() != nil {
			if lastErr != nil {
				return fmt.Errorf("%s timed out before attempt %d: %w", opName, attempt+1, lastErr)
			}
			return transportError(opName, 0, ctx.Err())
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt == cfg.MaxRetries {
			break
		}

		slog.Warn("Transient error detected, scheduling retry",
			"operation", opName,
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"error", lastErr)

		select {
		case <-time.After(backoffDelay(cfg, attempt)):
			continue
		case <-ctx.Done():
			return fmt.Errorf("%s context cancelled during backoff: %w", opName, lastErr)
		}
	}

	return fmt.Errorf("%s failed after %d retries: %w", opName, cfg.MaxRetries, lastErr)
}

// backoffDelay computes BaseDelay * 2^attempt plus up to 50% jitter, capped at MaxDelay.
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	backoff := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))

	var jitter time.Duration
	if half := int64(backoff) / 2; half > 0 {
		jitter = time.Duration(rand.Int63n(half))
	}
	sleepDuration := time.Duration(backoff) + jitter

	if cfg.MaxDelay > 0 {
		sleepDuration = min(sleepDuration, cfg.MaxDelay)
	}
	return sleepDuration
}

// retryingFetcher decorates a Fetcher with ExecuteAction.
type retryingFetcher struct {
	next Fetcher
	cfg  RetryConfig
}

// WithRetry returns a Fetcher that retries transient failures of f.
// A config with MaxRetries of zero returns f unchanged.
func WithRetry(f Fetcher, cfg RetryConfig) Fetcher {
	if cfg.MaxRetries <= 0 {
		return f
	}
	return &retryingFetcher{next: f, cfg: cfg}
}

func (r *retryingFetcher) FetchPolicy(ctx context.Context) (*policy.Document, error) {
	var doc *policy.Document
	err := ExecuteAction(ctx, r.cfg, "policy", func(ctx context.Context) error {
		d, err := r.next.FetchPolicy(ctx)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *retryingFetcher) FetchLatestVersion(ctx context.Context, bundleID string) (string, error) {
	var version string
	err := ExecuteAction(ctx, r.cfg, "store", func(ctx context.Context) error {
		v, err := r.next.FetchLatestVersion(ctx, bundleID)
		if err != nil {
			return err
		}
		version = v
		return nil
	})
	if err != nil {
		return "", err
	}
	return version, nil
}
