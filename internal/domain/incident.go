package domain

import "time"

// IncidentStatus enumerates lifecycle states for incidents.
type IncidentStatus string

const (
	IncidentStatusPending   IncidentStatus = "PENDIENTE"
	IncidentStatusAssigned  IncidentStatus = "ASIGNADA"
	IncidentStatusEscalated IncidentStatus = "ESCALADA"
	IncidentStatusScheduled IncidentStatus = "PROGRAMADA"
	IncidentStatusResolved  IncidentStatus = "RESUELTA"
	IncidentStatusClosed    IncidentStatus = "CERRADA"
	IncidentStatusRejected  IncidentStatus = "RECHAZADA"
)

// IsValid checks if the status is one of the defined lifecycle states.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusPending, IncidentStatusAssigned, IncidentStatusEscalated,
		IncidentStatusScheduled, IncidentStatusResolved, IncidentStatusClosed,
		IncidentStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further lifecycle transition is permitted.
func (s IncidentStatus) IsTerminal() bool {
	switch s {
	case IncidentStatusResolved, IncidentStatusClosed, IncidentStatusRejected:
		return true
	default:
		return false
	}
}

// IncidentPriority enumerates urgency tiers.
type IncidentPriority string

const (
	IncidentPriorityNormal IncidentPriority = "NORMAL"
	IncidentPriorityUrgent IncidentPriority = "URGENTE"
)

// IsValid checks if the priority is a defined tier.
func (p IncidentPriority) IsValid() bool {
	return p == IncidentPriorityNormal || p == IncidentPriorityUrgent
}

// ResolutionKind records whether internal staff or an external company closed
// the incident.
type ResolutionKind string

const (
	ResolutionKindConcierge ResolutionKind = "CONSERJE"
	ResolutionKindCompany   ResolutionKind = "EMPRESA_EXTERNA"
)

// Incident is the aggregate root for the maintenance lifecycle.
type Incident struct {
	ID                  string
	BuildingID          string
	ReportedByID        string
	ServiceType         ServiceType
	Description         string
	Priority            IncidentPriority
	Status              IncidentStatus
	AssigneeID          *string
	VisitID             *string
	VerifiedDescription *string
	ResolutionKind      *ResolutionKind
	ClosingComment      *string
	RejectionReason     *string
	AssignedAt          *time.Time
	VerifiedAt          *time.Time
	EscalatedAt         *time.Time
	RejectedAt          *time.Time
	ClosedAt            *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
