// Package compose turns a visualization into the user-facing response: a
// deterministic summary, optionally rewritten by an augmenter.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/floatchat/internal/domain"
)

// Fixed replies for queries that produce no chart.
const (
	OutOfScopeMessage = "I can only answer questions about ARGO float temperature, salinity or depth. " +
		"Try naming a parameter, an ocean region or a time period, for example \"salinity in the Bay of Bengal in 2023\"."
	EmptyResultMessage = "No profiles match that query. Try widening the region, the date range or the depth range."
)

// Composer builds responses. It is safe for concurrent use.
type Composer struct {
	augmenter domain.Augmenter
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a Composer. A nil augmenter disables elaboration.
func New(augmenter domain.Augmenter, timeout time.Duration, logger *slog.Logger) *Composer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Composer{augmenter: augmenter, timeout: timeout, logger: logger}
}

// Compose never fails. The response ID is left for the caller to assign.
func (c *Composer) Compose(ctx context.Context, question string, q domain.QueryIntent, viz domain.VisualizationSpec) domain.Response {
	resp := domain.Response{
		Visualization: viz,
		IntentEcho:    q,
		AnsweredAt:    domain.Now(),
	}

	switch {
	case !q.Answerable():
		resp.Status = domain.StatusOutOfScope
		resp.Narrative = OutOfScopeMessage
		return resp
	case viz.RecordCount == 0:
		resp.Status = domain.StatusEmpty
		resp.Narrative = EmptyResultMessage
		return resp
	}

	resp.Status = domain.StatusOK
	resp.Narrative = Summarize(q, viz)

	if c.augmenter != nil {
		if text, ok := c.elaborate(ctx, question, resp.Narrative, viz); ok {
			resp.Narrative = text
			resp.Elaborated = true
		}
	}
	return resp
}

func (c *Composer) elaborate(ctx context.Context, question, summary string, viz domain.VisualizationSpec) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.augmenter.Elaborate(ctx, domain.ElaborationRequest{
		Question:    question,
		Summary:     summary,
		ChartType:   viz.ChartType,
		RecordCount: viz.RecordCount,
	})
	if err != nil {
		c.logger.Warn("elaboration failed, using template", "error", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		c.logger.Warn("elaboration returned empty text, using template")
		return "", false
	}
	return text, true
}

// Summarize renders the deterministic one-line description of a result, e.g.
// "2 profiles in Arabian Sea, mean temperature 25.5°C (min 22.0°C, max 29.0°C)".
func Summarize(q domain.QueryIntent, viz domain.VisualizationSpec) string {
	var b strings.Builder
	b.WriteString(countLabel(viz.RecordCount))
	b.WriteString(" in ")
	b.WriteString(regionLabel(q))
	b.WriteString(dateLabel(q.DateRange))
	b.WriteString(depthLabel(q.DepthRange))
	if q.QualityFilter {
		b.WriteString(" (good quality only)")
	}

	if q.Parameter == domain.ParamNone {
		if counts := regionCounts(viz); counts != "" {
			b.WriteString(": ")
			b.WriteString(counts)
		}
		return b.String()
	}

	if s, ok := viz.SummaryStats[q.Parameter]; ok && s.Count > 0 {
		fmt.Fprintf(&b, ", mean %s %s (min %s, max %s)",
			q.Parameter, value(q.Parameter, s.Mean), value(q.Parameter, s.Min), value(q.Parameter, s.Max))
	}

	if len(viz.Groups) > 0 {
		parts := make([]string, 0, len(viz.Groups))
		for _, g := range viz.Groups {
			if g.Stats.Count == 0 {
				parts = append(parts, g.Label+" no data")
				continue
			}
			parts = append(parts, fmt.Sprintf("%s mean %s", g.Label, value(g.Parameter, g.Stats.Mean)))
		}
		b.WriteString("; ")
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}

func countLabel(n int) string {
	if n == 1 {
		return "1 profile"
	}
	return fmt.Sprintf("%d profiles", n)
}

func regionLabel(q domain.QueryIntent) string {
	regions := q.SpecificRegions()
	if len(regions) == 0 {
		return "all regions"
	}
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = string(r)
	}
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func dateLabel(d *domain.DateRange) string {
	if d == nil || d.IsOpen() {
		return ""
	}
	switch {
	case d.Start.IsZero():
		return " up to " + d.End.Format(time.DateOnly)
	case d.End.IsZero():
		return " since " + d.Start.Format(time.DateOnly)
	case d.Start.Equal(d.End):
		return " on " + d.Start.Format(time.DateOnly)
	default:
		return " from " + d.Start.Format(time.DateOnly) + " to " + d.End.Format(time.DateOnly)
	}
}

func depthLabel(d *domain.DepthRange) string {
	if d == nil {
		return ""
	}
	switch {
	case d.Min != nil && d.Max != nil:
		return fmt.Sprintf(" between %g and %g m", *d.Min, *d.Max)
	case d.Min != nil:
		return fmt.Sprintf(" deeper than %g m", *d.Min)
	case d.Max != nil:
		return fmt.Sprintf(" shallower than %g m", *d.Max)
	default:
		return ""
	}
}

// regionCounts lists how many points fall in each region, in first-seen order.
func regionCounts(viz domain.VisualizationSpec) string {
	var order []domain.Category
	counts := map[domain.Category]int{}
	for _, p := range viz.EncodedPoints {
		if counts[p.Category] == 0 {
			order = append(order, p.Category)
		}
		counts[p.Category]++
	}
	parts := make([]string, 0, len(order))
	for _, c := range order {
		parts = append(parts, fmt.Sprintf("%d in %s", counts[c], c))
	}
	return strings.Join(parts, ", ")
}

func value(p domain.Parameter, v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%s", *v, p.Unit())
}
