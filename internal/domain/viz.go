package domain

// Stats aggregates one parameter over a record set. Aggregates are nil when
// Count is zero.
type Stats struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// EncodedPoint is the marker drawn for one record.
type EncodedPoint struct {
	RecordID  string   `json:"record_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Category  Category `json:"category"`
	Glyph     string   `json:"glyph"`
}

// GroupStats is one bar of a comparison chart: a region or a parameter
// with its aggregate.
type GroupStats struct {
	Label     string    `json:"label"`
	Region    Region    `json:"region,omitempty"`
	Parameter Parameter `json:"parameter"`
	Stats     Stats     `json:"stats"`
}

// VisualizationSpec describes how a filtered record set should be drawn.
type VisualizationSpec struct {
	ChartType     ChartType           `json:"chart_type"`
	Parameter     Parameter           `json:"parameter,omitempty"`
	EncodedPoints []EncodedPoint      `json:"encoded_points"`
	SummaryStats  map[Parameter]Stats `json:"summary_stats"`
	Groups        []GroupStats        `json:"groups,omitempty"`
	RecordCount   int                 `json:"record_count"`
}

// Categories returns the distinct point categories in first-seen order.
func (v VisualizationSpec) Categories() []Category {
	seen := make(map[Category]bool, len(v.EncodedPoints))
	var out []Category
	for _, p := range v.EncodedPoints {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}
