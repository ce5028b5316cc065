package entities

import (
	"encoding/json"
	"time"
)

// SearchEvent represents a single search interaction for analytics.
type SearchEvent struct {
	ID             string          `json:"id" db:"id"`
	UserID         *string         `json:"user_id,omitempty" db:"user_id"`
	SearchTerm     string          `json:"search_term" db:"search_term"`
	Filters        json.RawMessage `json:"filters" db:"filters"`
	ResultsCount   int             `json:"results_count" db:"results_count"`
	ResponseTimeMs int             `json:"response_time_ms" db:"response_time_ms"`
	Location       *GeoPoint       `json:"location,omitempty" db:"location"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}
