package llm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/floatchat/internal/domain"
)

// Chain tries providers in order and returns the first success.
type Chain struct {
	providers []domain.Augmenter
	logger    *slog.Logger
}

// NewChain creates a fallback chain. It returns nil when no provider is
// given so callers can treat "no augmenter" uniformly.
func NewChain(logger *slog.Logger, providers ...domain.Augmenter) domain.Augmenter {
	if len(providers) == 0 {
		return nil
	}
	if len(providers) == 1 {
		return providers[0]
	}
	return &Chain{providers: providers, logger: logger}
}

func (c *Chain) Augment(ctx context.Context, text string, vocab domain.Vocabulary) (domain.IntentCandidate, error) {
	var errs []error
	for _, p := range c.providers {
		candidate, err := p.Augment(ctx, text, vocab)
		if err == nil {
			return candidate, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		c.logger.Info("augmenter provider failed, trying next", "error", err)
	}
	return domain.IntentCandidate{}, errors.Join(errs...)
}

func (c *Chain) Elaborate(ctx context.Context, req domain.ElaborationRequest) (string, error) {
	var errs []error
	for _, p := range c.providers {
		text, err := p.Elaborate(ctx, req)
		if err == nil {
			return text, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		c.logger.Info("augmenter provider failed, trying next", "error", err)
	}
	return "", errors.Join(errs...)
}
