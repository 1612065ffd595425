package dto

import (
	"time"

	"github.com/condoops/incident-service/internal/domain"
)

// CreateVisitRequest payload.
type CreateVisitRequest struct {
	BuildingID  string    `json:"buildingId"`
	CompanyID   string    `json:"companyId"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Notes       string    `json:"notes"`
	IncidentIDs []string  `json:"incidentIds"`
}

// UpdateVisitRequest carries partial visit updates.
type UpdateVisitRequest struct {
	ScheduledAt *time.Time          `json:"scheduledAt"`
	Notes       *string             `json:"notes"`
	Status      *domain.VisitStatus `json:"status"`
	IncidentIDs []string            `json:"incidentIds"`
}

// VisitResponse is the wire representation of a visit.
type VisitResponse struct {
	ID          string             `json:"id"`
	BuildingID  string             `json:"buildingId"`
	CompanyID   string             `json:"companyId"`
	ScheduledAt time.Time          `json:"scheduledAt"`
	Status      domain.VisitStatus `json:"status"`
	Notes       string             `json:"notes"`
	IncidentIDs []string           `json:"incidentIds"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// FromVisit maps the domain visit.
func FromVisit(visit *domain.Visit) VisitResponse {
	ids := visit.IncidentIDs
	if ids == nil {
		ids = []string{}
	}
	return VisitResponse{
		ID:          visit.ID,
		BuildingID:  visit.BuildingID,
		CompanyID:   visit.CompanyID,
		ScheduledAt: visit.ScheduledAt,
		Status:      visit.Status,
		Notes:       visit.Notes,
		IncidentIDs: ids,
		CreatedAt:   visit.CreatedAt,
		UpdatedAt:   visit.UpdatedAt,
	}
}
