package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfScope marks a query whose intent has no parameter, region, or date range.
	ErrOutOfScope = errors.New("query is out of scope")

	// ErrEmptyResult marks an answerable query that matched no records.
	ErrEmptyResult = errors.New("no matching records")
)

// NormalizationError explains why one input record was rejected.
type NormalizationError struct {
	Source string // file identifier
	Index  int    // position within the file, -1 for file-level failures
	Reason string
}

func (e *NormalizationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("normalize %s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("normalize %s[%d]: %s", e.Source, e.Index, e.Reason)
}

// AugmenterError wraps a failed call to an external augmenter.
// It is always handled by falling back to local behavior.
type AugmenterError struct {
	Provider string
	Op       string // "augment" or "elaborate"
	Err      error
}

func (e *AugmenterError) Error() string {
	return fmt.Sprintf("augmenter %s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *AugmenterError) Unwrap() error { return e.Err }
