package domain

import "time"

// Query outcomes recorded on audit events and metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeEmpty    = "empty"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// QueryEvent records one executed /geojson query for the audit topic.
type QueryEvent struct {
	Location         string    `json:"location"`
	Severity         string    `json:"severity,omitempty"`
	StartDate        string    `json:"start_date,omitempty"`
	EndDate          string    `json:"end_date,omitempty"`
	Outcome          string    `json:"outcome"`
	AccidentCount    int       `json:"accident_count"`
	QueryTimeSeconds float64   `json:"query_time"`
	ExecutedAt       time.Time `json:"executed_at"`
}

// NewQueryEvent stamps an audit event for q with the current time.
func NewQueryEvent(q AccidentQuery, outcome string, count int, elapsed time.Duration) QueryEvent {
	return QueryEvent{
		Location:         q.Location,
		Severity:         q.Severity,
		StartDate:        q.StartDate,
		EndDate:          q.EndDate,
		Outcome:          outcome,
		AccidentCount:    count,
		QueryTimeSeconds: elapsed.Seconds(),
		ExecutedAt:       clock.Now().UTC(),
	}
}
