package dto

import (
	"time"

	"github.com/condoops/incident-service/internal/domain"
)

// CreateIncidentRequest payload.
type CreateIncidentRequest struct {
	BuildingID  string                  `json:"buildingId"`
	ServiceType domain.ServiceType      `json:"serviceType"`
	Description string                  `json:"description"`
	Priority    domain.IncidentPriority `json:"priority"`
}

// UpdateIncidentRequest carries the generic-update partial fields.
type UpdateIncidentRequest struct {
	Description *string                  `json:"description"`
	ServiceType *domain.ServiceType      `json:"serviceType"`
	Priority    *domain.IncidentPriority `json:"priority"`
	Status      *domain.IncidentStatus   `json:"status"`
	AssigneeID  *string                  `json:"assigneeId"`
}

// AssignIncidentRequest payload.
type AssignIncidentRequest struct {
	AssigneeID string `json:"assigneeId"`
}

// ResolveIncidentRequest payload.
type ResolveIncidentRequest struct {
	VerifiedDescription *string `json:"verifiedDescription"`
	ClosingComment      string  `json:"closingComment"`
}

// EscalateIncidentRequest payload.
type EscalateIncidentRequest struct {
	VerifiedDescription string                   `json:"verifiedDescription"`
	Priority            *domain.IncidentPriority `json:"priority"`
}

// RejectIncidentRequest payload.
type RejectIncidentRequest struct {
	RejectionReason string `json:"rejectionReason"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// IncidentResponse is the wire representation of an incident.
type IncidentResponse struct {
	ID                  string                  `json:"id"`
	BuildingID          string                  `json:"buildingId"`
	ReportedByID        string                  `json:"reportedById"`
	ServiceType         domain.ServiceType      `json:"serviceType"`
	Description         string                  `json:"description"`
	Priority            domain.IncidentPriority `json:"priority"`
	Status              domain.IncidentStatus   `json:"status"`
	AssigneeID          *string                 `json:"assigneeId"`
	VisitID             *string                 `json:"visitId"`
	VerifiedDescription *string                 `json:"verifiedDescription"`
	ResolutionKind      *domain.ResolutionKind  `json:"resolutionKind"`
	ClosingComment      *string                 `json:"closingComment"`
	RejectionReason     *string                 `json:"rejectionReason"`
	AssignedAt          *time.Time              `json:"assignedAt"`
	VerifiedAt          *time.Time              `json:"verifiedAt"`
	EscalatedAt         *time.Time              `json:"escalatedAt"`
	RejectedAt          *time.Time              `json:"rejectedAt"`
	ClosedAt            *time.Time              `json:"closedAt"`
	CreatedAt           time.Time               `json:"createdAt"`
	UpdatedAt           time.Time               `json:"updatedAt"`
}

// IncidentDetailResponse adds the comment trail.
type IncidentDetailResponse struct {
	IncidentResponse
	Comments []CommentResponse `json:"comments"`
}

// CommentResponse is the wire representation of a comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	AuthorID  *string   `json:"authorId"`
	Body      string    `json:"body"`
	System    bool      `json:"system"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromIncident maps the domain incident.
func FromIncident(incident *domain.Incident) IncidentResponse {
	return IncidentResponse{
		ID:                  incident.ID,
		BuildingID:          incident.BuildingID,
		ReportedByID:        incident.ReportedByID,
		ServiceType:         incident.ServiceType,
		Description:         incident.Description,
		Priority:            incident.Priority,
		Status:              incident.Status,
		AssigneeID:          incident.AssigneeID,
		VisitID:             incident.VisitID,
		VerifiedDescription: incident.VerifiedDescription,
		ResolutionKind:      incident.ResolutionKind,
		ClosingComment:      incident.ClosingComment,
		RejectionReason:     incident.RejectionReason,
		AssignedAt:          incident.AssignedAt,
		VerifiedAt:          incident.VerifiedAt,
		EscalatedAt:         incident.EscalatedAt,
		RejectedAt:          incident.RejectedAt,
		ClosedAt:            incident.ClosedAt,
		CreatedAt:           incident.CreatedAt,
		UpdatedAt:           incident.UpdatedAt,
	}
}

// FromComment maps the domain comment.
func FromComment(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		System:    comment.System,
		CreatedAt: comment.CreatedAt,
	}
}
