package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultRetryDelay = time.Second

// RetryConfig holds the parameters for the retry strategy
type RetryConfig struct {
	MaxAttempts int
	Timeout     time.Duration
	BaseDelay   time.Duration
	Logger      *logrus.Logger
}

type retrying struct {
	next Collaborator
	cfg  RetryConfig
}

// WithRetry bounds every attempt by cfg.Timeout and retries failures with back-off
func WithRetry(next Collaborator, cfg RetryConfig) Collaborator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &retrying{next: next, cfg: cfg}
}

func (r *retrying) Complete(ctx context.Context, req Request) (string, error) {
	var lastErr error
	delay := r.cfg.BaseDelay

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		reply, err := r.attempt(ctx, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		// The caller gave up; retrying cannot help
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if attempt < r.cfg.MaxAttempts {
			r.cfg.Logger.WithError(err).WithFields(logrus.Fields{
				"attempt":      attempt,
				"max_attempts": r.cfg.MaxAttempts,
				"retry_in":     delay.String(),
			}).Warn("Completion request failed, retrying")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			delay *= 2
		}
	}

	return "", fmt.Errorf("completion failed after %d attempts: %w", r.cfg.MaxAttempts, lastErr)
}

func (r *retrying) attempt(ctx context.Context, req Request) (string, error) {
	if r.cfg.Timeout <= 0 {
		return r.next.Complete(ctx, req)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	reply, err := r.next.Complete(attemptCtx, req)
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", fmt.Errorf("completion timed out after %s: %w", r.cfg.Timeout, err)
	}
	return reply, err
}
