// Package index holds the in-memory, read-only set of normalized records and
// answers filter and aggregate queries over it.
package index

import (
	"slices"
	"time"

	"github.com/couchcryptid/floatchat/internal/domain"
)

// Index is built once and never mutated, so it is safe for concurrent readers.
type Index struct {
	records  []domain.MeasurementRecord
	regions  []domain.Region // parallel to records
	unparsed []domain.MeasurementRecord
	counts   map[domain.Region]int
	start    time.Time
	end      time.Time
}

type coord struct{ lat, lon float64 }

// Build indexes records in ingestion order. Records without a parsed
// timestamp are set aside in [Index.Unparsed] and never match a filter.
func Build(records []domain.MeasurementRecord) *Index {
	ix := &Index{
		records: make([]domain.MeasurementRecord, 0, len(records)),
		regions: make([]domain.Region, 0, len(records)),
		counts:  make(map[domain.Region]int),
	}

	// Floats share positions heavily, so classify each coordinate once.
	seen := make(map[coord]domain.Region)
	for _, r := range records {
		if !r.HasTimestamp() {
			ix.unparsed = append(ix.unparsed, r)
			continue
		}
		c := coord{r.Latitude, r.Longitude}
		region, ok := seen[c]
		if !ok {
			region = domain.ClassifyRegion(r.Latitude, r.Longitude)
			seen[c] = region
		}

		ix.records = append(ix.records, r)
		ix.regions = append(ix.regions, region)
		ix.counts[region]++

		if ix.start.IsZero() || r.Timestamp.Before(ix.start) {
			ix.start = r.Timestamp
		}
		if r.Timestamp.After(ix.end) {
			ix.end = r.Timestamp
		}
	}
	return ix
}

// Len returns the number of indexed records.
func (ix *Index) Len() int { return len(ix.records) }

// Records returns a copy of the indexed records in ingestion order.
func (ix *Index) Records() []domain.MeasurementRecord { return slices.Clone(ix.records) }

// Unparsed returns the records excluded for lacking a usable timestamp.
func (ix *Index) Unparsed() []domain.MeasurementRecord { return slices.Clone(ix.unparsed) }

// Regions returns the number of indexed records per region.
func (ix *Index) Regions() map[domain.Region]int {
	out := make(map[domain.Region]int, len(ix.counts))
	for k, v := range ix.counts {
		out[k] = v
	}
	return out
}

// TimeSpan returns the earliest and latest indexed timestamps. Both are zero
// for an empty index.
func (ix *Index) TimeSpan() (time.Time, time.Time) { return ix.start, ix.end }

type predicate func(i int) bool

// Filter returns the records satisfying every constraint set in q, in
// ingestion order. The empty intent matches every record.
func (ix *Index) Filter(q domain.QueryIntent) []domain.MeasurementRecord {
	preds := ix.predicates(q)
	out := make([]domain.MeasurementRecord, 0)
	for i := range ix.records {
		if matchAll(preds, i) {
			out = append(out, ix.records[i])
		}
	}
	return out
}

func matchAll(preds []predicate, i int) bool {
	for _, p := range preds {
		if !p(i) {
			return false
		}
	}
	return true
}

func (ix *Index) predicates(q domain.QueryIntent) []predicate {
	var preds []predicate

	if regions := q.SpecificRegions(); len(regions) > 0 {
		preds = append(preds, func(i int) bool {
			return slices.Contains(regions, ix.regions[i])
		})
	}

	for _, p := range q.InvolvedParameters() {
		preds = append(preds, func(i int) bool {
			return ix.records[i].Value(p) != nil
		})
	}

	if q.DateRange != nil {
		dr := *q.DateRange
		preds = append(preds, func(i int) bool {
			r := ix.records[i]
			return r.HasTimestamp() && dr.Contains(r.Timestamp)
		})
	}

	if q.DepthRange != nil {
		dr := *q.DepthRange
		preds = append(preds, func(i int) bool {
			d := ix.records[i].DepthM
			return d != nil && dr.Contains(*d)
		})
	}

	if q.QualityFilter {
		preds = append(preds, func(i int) bool {
			return ix.records[i].Quality == domain.QualityGood
		})
	}
	return preds
}

// Stats aggregates parameter p over records, skipping nil values.
func Stats(p domain.Parameter, records []domain.MeasurementRecord) domain.Stats {
	var (
		s      domain.Stats
		sum    float64
		lo, hi float64
	)
	for _, r := range records {
		v := r.Value(p)
		if v == nil {
			continue
		}
		if s.Count == 0 || *v < lo {
			lo = *v
		}
		if s.Count == 0 || *v > hi {
			hi = *v
		}
		sum += *v
		s.Count++
	}
	if s.Count == 0 {
		return s
	}
	mean := sum / float64(s.Count)
	s.Mean, s.Min, s.Max = &mean, &lo, &hi
	return s
}
