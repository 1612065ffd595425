package events

import (
	"time"

	"github.com/condoops/incident-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIncidentCreated        EventType = "incident_created"
	EventIncidentAssigned       EventType = "incident_assigned"
	EventIncidentEscalated      EventType = "incident_escalated"
	EventIncidentResolved       EventType = "incident_resolved"
	EventIncidentRejected       EventType = "incident_rejected"
	EventIncidentPriorityRaised EventType = "incident_priority_raised"
	EventIncidentCommented      EventType = "incident_commented"
)

// Event represents a domain event emitted by the lifecycle engine.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IncidentID string      `json:"incident_id"`
	BuildingID string      `json:"building_id"`
	ActorID    string      `json:"actor_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// IncidentCreatedPayload payload.
type IncidentCreatedPayload struct {
	ServiceType domain.ServiceType      `json:"service_type"`
	Priority    domain.IncidentPriority `json:"priority"`
	ReporterID  string                  `json:"reporter_id"`
}

// IncidentAssignedPayload payload.
type IncidentAssignedPayload struct {
	AssigneeID string `json:"assignee_id"`
}

// IncidentEscalatedPayload payload.
type IncidentEscalatedPayload struct {
	Urgent     bool   `json:"urgent"`
	ReporterID string `json:"reporter_id"`
}

// IncidentResolvedPayload payload.
type IncidentResolvedPayload struct {
	ResolutionKind domain.ResolutionKind `json:"resolution_kind"`
	ReporterID     string                `json:"reporter_id"`
}

// IncidentRejectedPayload payload.
type IncidentRejectedPayload struct {
	ReporterID string `json:"reporter_id"`
	Reason     string `json:"reason"`
}

// IncidentPriorityRaisedPayload payload.
type IncidentPriorityRaisedPayload struct {
	NewPriority domain.IncidentPriority `json:"new_priority"`
}

// IncidentCommentedPayload payload. Recipients are resolved by the consumer:
// reporter, assignee, and building admins when the commenter is a resident,
// always excluding the commenter.
type IncidentCommentedPayload struct {
	CommentID     string      `json:"comment_id"`
	CommenterRole domain.Role `json:"commenter_role"`
	ReporterID    string      `json:"reporter_id"`
	AssigneeID    *string     `json:"assignee_id,omitempty"`
}
