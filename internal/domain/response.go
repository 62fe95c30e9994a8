package domain

import "time"

// Status classifies the outcome of a query.
type Status string

const (
	StatusOK         Status = "ok"
	StatusEmpty      Status = "empty"
	StatusOutOfScope Status = "out_of_scope"
)

// Response is the user-facing answer to one question.
type Response struct {
	ID            string            `json:"id"`
	Status        Status            `json:"status"`
	Visualization VisualizationSpec `json:"visualization"`
	Narrative     string            `json:"narrative"`
	IntentEcho    QueryIntent       `json:"intent"`
	Elaborated    bool              `json:"elaborated"`
	AnsweredAt    time.Time         `json:"answered_at"`
}

// QueryEvent is the audit record published after each answered question.
type QueryEvent struct {
	ID          string        `json:"id"`
	Question    string        `json:"question"`
	Status      Status        `json:"status"`
	ChartType   ChartType     `json:"chart_type"`
	RecordCount int           `json:"record_count"`
	Intent      QueryIntent   `json:"intent"`
	Elaborated  bool          `json:"elaborated"`
	AnsweredAt  time.Time     `json:"answered_at"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"duration_ms"`
}

// NewQueryEvent summarizes a response for publishing.
func NewQueryEvent(question string, resp Response, took time.Duration) QueryEvent {
	return QueryEvent{
		ID:          resp.ID,
		Question:    question,
		Status:      resp.Status,
		ChartType:   resp.Visualization.ChartType,
		RecordCount: resp.Visualization.RecordCount,
		Intent:      resp.IntentEcho,
		Elaborated:  resp.Elaborated,
		AnsweredAt:  resp.AnsweredAt,
		Duration:    took,
		DurationMS:  took.Milliseconds(),
	}
}
