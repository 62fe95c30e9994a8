// Package pipeline orchestrates one question end to end:
// interpret, filter, select a chart, compose, publish.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"

	"github.com/couchcryptid/floatchat/internal/compose"
	"github.com/couchcryptid/floatchat/internal/domain"
	"github.com/couchcryptid/floatchat/internal/index"
	"github.com/couchcryptid/floatchat/internal/interpret"
	"github.com/couchcryptid/floatchat/internal/observability"
	"github.com/couchcryptid/floatchat/internal/visual"
)

const (
	publishTimeout    = 5 * time.Second
	publishAttempts   = 3
	publishBackoff    = 200 * time.Millisecond
	maxPublishBackoff = time.Second
)

// Publisher receives an audit event for every answered question.
type Publisher interface {
	Publish(ctx context.Context, event domain.QueryEvent) error
}

// Pipeline answers questions against a read-only index. It is safe for
// concurrent use.
type Pipeline struct {
	interpreter *interpret.Interpreter
	index       *index.Index
	chartRules  []visual.Rule
	composer    *compose.Composer
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics

	inflight sync.WaitGroup
	backoff  time.Duration
}

// New creates a Pipeline. A nil publisher disables audit events.
func New(in *interpret.Interpreter, ix *index.Index, c *compose.Composer, pub Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	metrics.IndexSize.Set(float64(ix.Len()))
	metrics.RecordsUnparsed.Add(float64(len(ix.Unparsed())))
	return &Pipeline{
		interpreter: in,
		index:       ix,
		chartRules:  visual.DefaultRules,
		composer:    c,
		publisher:   pub,
		logger:      logger,
		metrics:     metrics,
		backoff:     publishBackoff,
	}
}

// CheckReadiness returns nil once the index holds at least one record.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.index.Len() == 0 {
		return errors.New("measurement index is empty")
	}
	return nil
}

// Ask answers one question. It never fails; problems surface as the
// response status and narrative.
func (p *Pipeline) Ask(ctx context.Context, text string) domain.Response {
	start := time.Now()

	q, records, err := p.Lookup(ctx, text)
	if err != nil {
		p.logger.Debug("no records for question", "reason", err)
	}
	viz := visual.SelectWith(p.chartRules, q, records)
	resp := p.composer.Compose(ctx, text, q, viz)
	resp.ID = uuid.NewString()

	took := time.Since(start)
	p.metrics.Queries.WithLabelValues(string(resp.Status)).Inc()
	p.metrics.QueryDuration.Observe(took.Seconds())
	p.metrics.ChartSelections.WithLabelValues(string(viz.ChartType)).Inc()

	p.logger.Info("question answered",
		"id", resp.ID,
		"status", resp.Status,
		"chart_type", viz.ChartType,
		"records", viz.RecordCount,
		"intent_source", q.Source,
		"elaborated", resp.Elaborated,
		"duration", took,
	)

	p.publishAsync(ctx, domain.NewQueryEvent(text, resp, took))
	return resp
}

// Lookup interprets text and returns the intent with its matching records.
// It returns domain.ErrOutOfScope when the intent names nothing to filter on
// and domain.ErrEmptyResult when nothing matched. The slice is never nil.
func (p *Pipeline) Lookup(ctx context.Context, text string) (domain.QueryIntent, []domain.MeasurementRecord, error) {
	q := p.interpreter.Interpret(ctx, text)
	p.metrics.IntentSource.WithLabelValues(q.Source).Inc()
	if !q.Answerable() {
		return q, []domain.MeasurementRecord{}, domain.ErrOutOfScope
	}
	records := p.index.Filter(q)
	if len(records) == 0 {
		return q, []domain.MeasurementRecord{}, domain.ErrEmptyResult
	}
	return q, records, nil
}

// Drain waits for in-flight audit events to finish publishing or for ctx to
// expire, whichever comes first.
func (p *Pipeline) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// publishAsync hands the event to the publisher without holding up the
// response. The request context is detached so a finished request does not
// cancel the write.
func (p *Pipeline) publishAsync(ctx context.Context, event domain.QueryEvent) {
	if p.publisher == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	p.inflight.Go(func() {
		ctx, cancel := context.WithTimeout(detached, publishTimeout)
		defer cancel()
		p.publish(ctx, event)
	})
}

func (p *Pipeline) publish(ctx context.Context, event domain.QueryEvent) {
	backoff := p.backoff
	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err = p.publisher.Publish(ctx, event); err == nil {
			return
		}
		if attempt == publishAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		p.logger.Debug("retrying query event publish", "id", event.ID, "attempt", attempt, "error", err)
		backoff = retry.NextBackoff(backoff, maxPublishBackoff)
	}
	p.metrics.AuditPublishErrors.Inc()
	p.logger.Warn("publish query event failed", "id", event.ID, "error", err)
}
