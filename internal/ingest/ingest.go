// Package ingest loads a directory of ARGO JSON files into normalized records.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/floatchat/internal/domain"
	"github.com/couchcryptid/floatchat/internal/observability"
)

// FileResult reports how one file fared.
type FileResult struct {
	Source   string
	Accepted int
	Rejected []domain.NormalizationError
}

// Failed reports whether the file could not be read or parsed at all.
func (f FileResult) Failed() bool {
	return len(f.Rejected) == 1 && f.Rejected[0].Index < 0
}

// Result is the outcome of loading a directory.
type Result struct {
	Records  []domain.MeasurementRecord
	Rejected []domain.NormalizationError
	Files    []FileResult
}

// Loader walks data directories. Metrics may be nil.
type Loader struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{logger: logger, metrics: metrics}
}

// Ingest normalizes every *.json file under dir, recursively, in lexical
// order. Unreadable or malformed files become file-level rejections; only a
// missing directory or a cancelled context is an error.
func (l *Loader) Ingest(ctx context.Context, dir string) (Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Result{}, fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("data dir %s is not a directory", dir)
	}

	var res Result
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			l.logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}

		source, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			source = path
		}
		fr := l.ingestFile(path, filepath.ToSlash(source), &res)
		res.Files = append(res.Files, fr)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return res, err
		}
		return res, fmt.Errorf("walk data dir: %w", err)
	}

	l.logger.Info("ingestion complete",
		"dir", dir,
		"files", len(res.Files),
		"accepted", len(res.Records),
		"rejected", len(res.Rejected),
	)
	return res, nil
}

func (l *Loader) ingestFile(path, source string, res *Result) FileResult {
	fr := FileResult{Source: source}

	data, err := os.ReadFile(path)
	if err != nil {
		fr.Rejected = []domain.NormalizationError{{Source: source, Index: -1, Reason: err.Error()}}
	} else {
		var records []domain.MeasurementRecord
		records, fr.Rejected = domain.NormalizeFile(source, data)
		fr.Accepted = len(records)
		res.Records = append(res.Records, records...)
	}
	res.Rejected = append(res.Rejected, fr.Rejected...)

	if l.metrics != nil {
		l.metrics.RecordsIngested.Add(float64(fr.Accepted))
		l.metrics.RecordsRejected.Add(float64(len(fr.Rejected)))
	}
	for _, r := range fr.Rejected {
		l.logger.Debug("record rejected", "source", r.Source, "index", r.Index, "reason", r.Reason)
	}
	if fr.Failed() {
		l.logger.Warn("file could not be normalized", "source", source, "reason", fr.Rejected[0].Reason)
	}
	return fr
}
