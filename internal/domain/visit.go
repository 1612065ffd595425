package domain

import "time"

// VisitStatus enumerates states of a scheduled company visit.
type VisitStatus string

const (
	VisitStatusScheduled  VisitStatus = "PROGRAMADA"
	VisitStatusInProgress VisitStatus = "EN_PROGRESO"
	VisitStatusCompleted  VisitStatus = "COMPLETADA"
	VisitStatusCancelled  VisitStatus = "CANCELADA"
)

// IsValid checks if the status is a defined visit state.
func (s VisitStatus) IsValid() bool {
	switch s {
	case VisitStatusScheduled, VisitStatusInProgress, VisitStatusCompleted, VisitStatusCancelled:
		return true
	default:
		return false
	}
}

// Visit is a scheduled appointment with an external service company,
// optionally bundling several incidents.
type Visit struct {
	ID          string
	BuildingID  string
	CompanyID   string
	ScheduledAt time.Time
	Notes       string
	Status      VisitStatus
	IncidentIDs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
