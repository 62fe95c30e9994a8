// Package visual chooses a chart for a filtered record set and encodes each
// record as a categorized glyph.
package visual

import (
	"time"

	"github.com/couchcryptid/floatchat/internal/domain"
	"github.com/couchcryptid/floatchat/internal/index"
)

// TimeSeriesMinSpan is the shortest date range drawn as a time series.
const TimeSeriesMinSpan = 90 * 24 * time.Hour

// Rule proposes a chart type. Rules are evaluated in order and the first
// one that applies decides the chart.
type Rule struct {
	Name  string
	Apply func(q domain.QueryIntent, records []domain.MeasurementRecord) (domain.ChartType, bool)
}

// DefaultRules: an explicit hint wins, then comparisons, then long date
// ranges, then a parameter histogram, and a map otherwise.
var DefaultRules = []Rule{
	{Name: "hint", Apply: hintRule},
	{Name: "comparison", Apply: comparisonRule},
	{Name: "time_series", Apply: timeSeriesRule},
	{Name: "parameter", Apply: parameterRule},
	{Name: "map", Apply: func(domain.QueryIntent, []domain.MeasurementRecord) (domain.ChartType, bool) {
		return domain.ChartMap, true
	}},
}

// Select builds the visualization for records using DefaultRules.
func Select(q domain.QueryIntent, records []domain.MeasurementRecord) domain.VisualizationSpec {
	return SelectWith(DefaultRules, q, records)
}

// SelectWith builds the visualization using a custom rule list.
func SelectWith(rules []Rule, q domain.QueryIntent, records []domain.MeasurementRecord) domain.VisualizationSpec {
	spec := domain.VisualizationSpec{
		ChartType:     domain.ChartNone,
		Parameter:     q.Parameter,
		EncodedPoints: []domain.EncodedPoint{},
		SummaryStats:  summarize(records),
		RecordCount:   len(records),
	}
	if len(records) == 0 {
		return spec
	}

	for _, r := range rules {
		if ct, ok := r.Apply(q, records); ok {
			spec.ChartType = ct
			break
		}
	}

	spec.EncodedPoints = encode(q.Parameter, records)
	if spec.ChartType == domain.ChartComparisonBars {
		spec.Groups = groups(q, records)
	}
	return spec
}

func hintRule(q domain.QueryIntent, _ []domain.MeasurementRecord) (domain.ChartType, bool) {
	return q.ChartHint, q.ChartHint != "" && q.ChartHint != domain.ChartNone
}

func comparisonRule(q domain.QueryIntent, _ []domain.MeasurementRecord) (domain.ChartType, bool) {
	ok := q.Comparison && (len(q.SpecificRegions()) >= 2 || len(q.InvolvedParameters()) >= 2)
	return domain.ChartComparisonBars, ok
}

// timeSeriesRule clamps open range ends to the records' own extent before
// measuring the span.
func timeSeriesRule(q domain.QueryIntent, records []domain.MeasurementRecord) (domain.ChartType, bool) {
	if q.Parameter == domain.ParamNone || q.DateRange == nil {
		return "", false
	}
	first, last, ok := extent(records)
	if !ok {
		return "", false
	}
	start, end := q.DateRange.Start, q.DateRange.End
	if start.IsZero() {
		start = first
	}
	if end.IsZero() {
		end = last
	}
	return domain.ChartTimeSeries, end.Sub(start) > TimeSeriesMinSpan
}

func parameterRule(q domain.QueryIntent, _ []domain.MeasurementRecord) (domain.ChartType, bool) {
	return domain.ChartHistogram, q.Parameter != domain.ParamNone
}

func extent(records []domain.MeasurementRecord) (time.Time, time.Time, bool) {
	var first, last time.Time
	for _, r := range records {
		if !r.HasTimestamp() {
			continue
		}
		if first.IsZero() || r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	return first, last, !first.IsZero()
}

// encode categorizes each record by parameter p, or by region when p is unset.
func encode(p domain.Parameter, records []domain.MeasurementRecord) []domain.EncodedPoint {
	points := make([]domain.EncodedPoint, 0, len(records))
	for _, r := range records {
		pt := domain.EncodedPoint{RecordID: r.ID, Latitude: r.Latitude, Longitude: r.Longitude}
		if p == domain.ParamNone {
			pt.Category, pt.Glyph = domain.RegionMarker(r.Region())
		} else {
			pt.Category = domain.Categorize(p, r.Value(p))
			pt.Glyph = pt.Category.Glyph()
		}
		points = append(points, pt)
	}
	return points
}

func summarize(records []domain.MeasurementRecord) map[domain.Parameter]domain.Stats {
	out := make(map[domain.Parameter]domain.Stats, len(domain.Parameters))
	for _, p := range domain.Parameters {
		out[p] = index.Stats(p, records)
	}
	return out
}

// groups splits records into comparison bars: by the named regions, else by
// the named parameters, else by the regions present in the records.
func groups(q domain.QueryIntent, records []domain.MeasurementRecord) []domain.GroupStats {
	param := q.Parameter
	if param == domain.ParamNone {
		param = domain.ParamTemperature
	}

	if params := q.InvolvedParameters(); len(params) >= 2 && len(q.SpecificRegions()) < 2 {
		out := make([]domain.GroupStats, 0, len(params))
		for _, p := range params {
			out = append(out, domain.GroupStats{Label: string(p), Parameter: p, Stats: index.Stats(p, records)})
		}
		return out
	}

	regions := q.SpecificRegions()
	byRegion := make(map[domain.Region][]domain.MeasurementRecord)
	for _, r := range records {
		region := r.Region()
		if len(q.SpecificRegions()) == 0 && len(byRegion[region]) == 0 {
			regions = append(regions, region)
		}
		byRegion[region] = append(byRegion[region], r)
	}

	out := make([]domain.GroupStats, 0, len(regions))
	for _, region := range regions {
		out = append(out, domain.GroupStats{
			Label:     string(region),
			Region:    region,
			Parameter: param,
			Stats:     index.Stats(param, byRegion[region]),
		})
	}
	return out
}
