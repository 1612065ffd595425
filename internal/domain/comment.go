package domain

import "time"

// Comment is an append-only audit trail entry on an incident. System comments
// record lifecycle transitions; user comments carry AuthorID.
type Comment struct {
	ID         string
	IncidentID string
	AuthorID   *string
	Body       string
	System     bool
	CreatedAt  time.Time
}
