// Package completion talks to external text/vision language models.
package completion

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"resalelens/server/config"
)

// Request is a single prompt with an optional inline image
type Request struct {
	System    string
	User      string
	Image     []byte
	ImageMIME string
}

// Collaborator returns the free-form text reply of a model
type Collaborator interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// New builds the configured provider wrapped with timeout and retry handling
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (Collaborator, error) {
	var (
		provider Collaborator
		err      error
	)

	switch cfg.Completion.Provider {
	case config.ProviderGemini:
		provider, err = NewGeminiClient(ctx, cfg.Completion.APIKey, cfg.Completion.Model)
	case config.ProviderOpenAI:
		provider, err = NewOpenAIClient(cfg.Completion.BaseURL, cfg.Completion.APIKey, cfg.Completion.Model)
	default:
		err = fmt.Errorf("unknown completion provider %q", cfg.Completion.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithRetry(provider, RetryConfig{
		MaxAttempts: cfg.Completion.MaxAttempts,
		Timeout:     cfg.Completion.Timeout,
		BaseDelay:   defaultRetryDelay,
		Logger:      logger,
	}), nil
}
