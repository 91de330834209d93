package gancio

import (
	"fmt"
	"time"
)

// Place is the remote calendar's venue object.
type Place struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RemoteEvent is a read-only mirror of one event as the remote store reports
// it. It is rebuilt from the listing every run and never persisted locally.
type RemoteEvent struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug,omitempty"`
	StartDatetime int64  `json:"start_datetime"`
	Place         Place  `json:"place"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// Date returns the event's calendar date (YYYY-MM-DD, UTC) derived from the
// unix start timestamp.
func (e RemoteEvent) Date() string {
	if e.StartDatetime == 0 {
		return ""
	}
	return time.Unix(e.StartDatetime, 0).UTC().Format("2006-01-02")
}

// NewEvent is the payload for creating an event.
type NewEvent struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	StartDatetime int64    `json:"start_datetime"`
	EndDatetime   int64    `json:"end_datetime,omitempty"`
	PlaceID       int      `json:"place_id"`
	Tags          []string `json:"tags"`
}

// AuthError reports a failed login. It is fatal to the run.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: status %d", e.StatusCode)
}

// APIError reports a non-2xx response on an individual call. Callers treat it
// as non-fatal per item and aggregate it into the run summary.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}
