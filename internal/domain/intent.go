package domain

import (
	"math"
	"slices"
	"strings"
	"time"
)

// ChartType is the visualization kind chosen for a response.
type ChartType string

const (
	ChartNone           ChartType = "none"
	ChartMap            ChartType = "map"
	ChartHistogram      ChartType = "histogram"
	ChartTimeSeries     ChartType = "time_series"
	ChartComparisonBars ChartType = "comparison_bars"
)

// ParseChartType accepts the chart names a user or augmenter may request.
func ParseChartType(s string) (ChartType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "map":
		return ChartMap, true
	case "histogram":
		return ChartHistogram, true
	case "time_series", "time series", "timeseries":
		return ChartTimeSeries, true
	case "comparison_bars", "comparison bars", "bars":
		return ChartComparisonBars, true
	default:
		return "", false
	}
}

// ParseParameter accepts canonical parameter names case-insensitively.
func ParseParameter(s string) (Parameter, bool) {
	p := Parameter(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p, true
	}
	return ParamNone, false
}

// DateRange is an inclusive range of calendar days. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"start,omitzero"`
	End   time.Time `json:"end,omitzero"`
}

// Contains reports whether t falls on or between the bounding days.
func (d DateRange) Contains(t time.Time) bool {
	if !d.Start.IsZero() && t.Before(d.Start) {
		return false
	}
	if !d.End.IsZero() && !t.Before(d.End.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// IsOpen reports whether neither bound is set.
func (d DateRange) IsOpen() bool {
	return d.Start.IsZero() && d.End.IsZero()
}

// DepthRange is an inclusive range in metres. A nil bound is open.
type DepthRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Contains reports whether depth lies within the bounds.
func (d DepthRange) Contains(depth float64) bool {
	if d.Min != nil && depth < *d.Min {
		return false
	}
	if d.Max != nil && depth > *d.Max {
		return false
	}
	return true
}

// QueryIntent is the structured decomposition of a user's question.
type QueryIntent struct {
	Parameter     Parameter   `json:"parameter"`
	Parameters    []Parameter `json:"parameters,omitempty"`
	Region        Region      `json:"region,omitempty"`
	Regions       []Region    `json:"regions,omitempty"`
	DateRange     *DateRange  `json:"date_range,omitempty"`
	DepthRange    *DepthRange `json:"depth_range,omitempty"`
	Comparison    bool        `json:"comparison"`
	ChartHint     ChartType   `json:"chart_hint,omitempty"`
	QualityFilter bool        `json:"quality_filter"`
	Source        string      `json:"source,omitempty"` // "augmenter" or "rules"
}

// Answerable reports whether the intent names a parameter, region, or date range.
func (q QueryIntent) Answerable() bool {
	return q.Parameter != ParamNone || q.Region != RegionUnset || q.DateRange != nil
}

// InvolvedParameters returns the parameters the response should describe.
func (q QueryIntent) InvolvedParameters() []Parameter {
	if len(q.Parameters) > 0 {
		return q.Parameters
	}
	if q.Parameter != ParamNone {
		return []Parameter{q.Parameter}
	}
	return nil
}

// SpecificRegions returns the named basins, excluding "all".
func (q QueryIntent) SpecificRegions() []Region {
	if len(q.Regions) > 0 {
		return q.Regions
	}
	if q.Region.IsSpecific() {
		return []Region{q.Region}
	}
	return nil
}

// Vocabulary is the closed set of terms an augmenter may answer with.
type Vocabulary struct {
	Parameters []Parameter `json:"parameters"`
	Regions    []Region    `json:"regions"`
	ChartTypes []ChartType `json:"chart_types"`
}

// DefaultVocabulary returns every recognized parameter, region, and chart type.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Parameters: Parameters,
		Regions:    append([]Region{RegionAll}, Regions...),
		ChartTypes: []ChartType{ChartMap, ChartHistogram, ChartTimeSeries, ChartComparisonBars},
	}
}

// IntentCandidate is an augmenter's untrusted answer. Every field is free
// text until [IntentCandidate.Validate] checks it against the vocabulary.
type IntentCandidate struct {
	Parameter     string   `json:"parameter"`
	Parameters    []string `json:"parameters"`
	Region        string   `json:"region"`
	Regions       []string `json:"regions"`
	DateStart     string   `json:"date_start"`
	DateEnd       string   `json:"date_end"`
	DepthMin      *float64 `json:"depth_min"`
	DepthMax      *float64 `json:"depth_max"`
	Comparison    bool     `json:"comparison"`
	ChartHint     string   `json:"chart_hint"`
	QualityFilter bool     `json:"quality_filter"`
}

// Validate converts the candidate into a QueryIntent, discarding any field
// whose value falls outside the closed vocabulary or fails to parse.
func (c IntentCandidate) Validate() QueryIntent {
	var q QueryIntent

	if p, ok := ParseParameter(c.Parameter); ok {
		q.Parameter = p
	}
	for _, s := range c.Parameters {
		if p, ok := ParseParameter(s); ok && !slices.Contains(q.Parameters, p) {
			q.Parameters = append(q.Parameters, p)
		}
	}
	if q.Parameter == ParamNone && len(q.Parameters) > 0 {
		q.Parameter = q.Parameters[0]
	}

	if r, ok := ParseRegion(c.Region); ok {
		q.Region = r
	}
	for _, s := range c.Regions {
		if r, ok := ParseRegion(s); ok && r.IsSpecific() && !slices.Contains(q.Regions, r) {
			q.Regions = append(q.Regions, r)
		}
	}
	if q.Region == RegionUnset && len(q.Regions) > 0 {
		q.Region = q.Regions[0]
	}

	q.DateRange = validateDates(c.DateStart, c.DateEnd)
	q.DepthRange = validateDepths(c.DepthMin, c.DepthMax)

	q.Comparison = c.Comparison
	if ct, ok := ParseChartType(c.ChartHint); ok {
		q.ChartHint = ct
	}
	q.QualityFilter = c.QualityFilter
	return q
}

func validateDates(startStr, endStr string) *DateRange {
	start, startOK := parseDay(startStr)
	end, endOK := parseDay(endStr)
	if !startOK && !endOK {
		return nil
	}
	if startOK && endOK && end.Before(start) {
		return nil
	}
	var d DateRange
	if startOK {
		d.Start = start
	}
	if endOK {
		d.End = end
	}
	return &d
}

func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func validateDepths(minD, maxD *float64) *DepthRange {
	valid := func(v *float64) *float64 {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			return nil
		}
		out := *v
		return &out
	}
	d := DepthRange{Min: valid(minD), Max: valid(maxD)}
	if d.Min == nil && d.Max == nil {
		return nil
	}
	if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
		return nil
	}
	return &d
}
