package domain

import "context"

// ElaborationRequest carries what an augmenter needs to rewrite a summary.
type ElaborationRequest struct {
	Question    string
	Summary     string
	ChartType   ChartType
	RecordCount int
}

// Augmenter is an optional natural-language service. Every failure is
// returned as an error so callers can fall back to local behavior.
type Augmenter interface {
	// Augment proposes an intent for text, restricted to vocab.
	Augment(ctx context.Context, text string, vocab Vocabulary) (IntentCandidate, error)

	// Elaborate rewrites a deterministic summary into fuller prose.
	Elaborate(ctx context.Context, req ElaborationRequest) (string, error)
}
