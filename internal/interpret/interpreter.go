// Package interpret turns free-text questions into structured query intents.
//
// An optional augmenter is asked first under a bounded timeout; its answer is
// validated against the closed vocabulary. When it is absent, fails, or
// returns nothing answerable, an ordered list of independent extractor rules
// runs over the folded text instead.
package interpret

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/floatchat/internal/domain"
)

// DefaultAugmenterTimeout bounds one augmenter call when none is configured.
const DefaultAugmenterTimeout = 5 * time.Second

// Interpreter extracts a QueryIntent from text.
type Interpreter struct {
	augmenter domain.Augmenter
	rules     []Rule
	vocab     domain.Vocabulary
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates an Interpreter. A nil augmenter disables the augmented path.
func New(augmenter domain.Augmenter, timeout time.Duration, logger *slog.Logger) *Interpreter {
	if timeout <= 0 {
		timeout = DefaultAugmenterTimeout
	}
	return &Interpreter{
		augmenter: augmenter,
		rules:     DefaultRules,
		vocab:     domain.DefaultVocabulary(),
		timeout:   timeout,
		logger:    logger,
	}
}

// Interpret never fails: the worst outcome is an unanswerable intent.
func (in *Interpreter) Interpret(ctx context.Context, text string) domain.QueryIntent {
	if in.augmenter != nil {
		if q, ok := in.augment(ctx, text); ok {
			return q
		}
	}
	return ApplyRules(in.rules, text)
}

func (in *Interpreter) augment(ctx context.Context, text string) (domain.QueryIntent, bool) {
	ctx, cancel := context.WithTimeout(ctx, in.timeout)
	defer cancel()

	candidate, err := in.augmenter.Augment(ctx, text, in.vocab)
	if err != nil {
		in.logger.Warn("augmenter failed, using rules", "error", err)
		return domain.QueryIntent{}, false
	}

	q := candidate.Validate()
	if !q.Answerable() {
		in.logger.Debug("augmenter intent not answerable, using rules", "candidate", candidate)
		return domain.QueryIntent{}, false
	}
	q.Source = "augmenter"
	return q, true
}
