package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/condoops/incident-service/internal/authz"
	"github.com/condoops/incident-service/internal/domain"
	"github.com/condoops/incident-service/internal/events"
	"github.com/condoops/incident-service/internal/repository"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

const (
	minDescriptionLen    = 10
	minClosingCommentLen = 5
)

// IncidentService owns the incident lifecycle: it validates transitions,
// applies side effects and emits domain events consumed by the notification
// dispatcher.
type IncidentService struct {
	incidents  repository.IncidentRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	buildings  repository.BuildingRepository
	dispatcher events.Dispatcher
}

// IncidentDependencies bundles repositories for the lifecycle engine.
type IncidentDependencies struct {
	IncidentRepo repository.IncidentRepository
	CommentRepo  repository.CommentRepository
	UserRepo     repository.UserRepository
	BuildingRepo repository.BuildingRepository
	Dispatcher   events.Dispatcher
}

// NewIncidentService constructs the engine.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	return &IncidentService{
		incidents:  deps.IncidentRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		buildings:  deps.BuildingRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateIncidentInput describes incident creation payload.
type CreateIncidentInput struct {
	BuildingID  string
	ServiceType domain.ServiceType
	Description string
	Priority    domain.IncidentPriority
}

// UpdateIncidentInput carries the generic-update partial fields.
type UpdateIncidentInput struct {
	Description *string
	ServiceType *domain.ServiceType
	Priority    *domain.IncidentPriority
	Status      *domain.IncidentStatus
	AssigneeID  *string
}

// IncidentListFilter describes listing filters before role scoping.
type IncidentListFilter struct {
	Statuses   []domain.IncidentStatus
	Priorities []domain.IncidentPriority
	BuildingID *string
	Limit      int
	Offset     int
}

// Create registers a new incident in PENDIENTE.
func (s *IncidentService) Create(ctx context.Context, caller *domain.User, input CreateIncidentInput) (*domain.Incident, error) {
	if d := authz.CanCreateIncident(caller, input.BuildingID); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	fields := map[string][]string{}
	if !input.ServiceType.IsValid() {
		fields["serviceType"] = append(fields["serviceType"], "unknown service type")
	}
	if len(strings.TrimSpace(input.Description)) < minDescriptionLen {
		fields["description"] = append(fields["description"],
			fmt.Sprintf("must be at least %d characters", minDescriptionLen))
	}
	if input.Priority == "" {
		input.Priority = domain.IncidentPriorityNormal
	}
	if !input.Priority.IsValid() {
		fields["priority"] = append(fields["priority"], "unknown priority")
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid incident", fields)
	}
	if _, err := s.buildings.GetByID(ctx, input.BuildingID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("building", map[string]any{"building_id": input.BuildingID})
		}
		return nil, apperrors.MapError(err)
	}

	incident := &domain.Incident{
		BuildingID:   input.BuildingID,
		ReportedByID: caller.ID,
		ServiceType:  input.ServiceType,
		Description:  strings.TrimSpace(input.Description),
		Priority:     input.Priority,
		Status:       domain.IncidentStatusPending,
	}
	if err := s.incidents.Create(ctx, incident); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentCreated,
		IncidentID: incident.ID,
		BuildingID: incident.BuildingID,
		ActorID:    caller.ID,
		Payload: events.IncidentCreatedPayload{
			ServiceType: incident.ServiceType,
			Priority:    incident.Priority,
			ReporterID:  incident.ReportedByID,
		},
	})
	return incident, nil
}

// Assign moves a PENDIENTE or ESCALADA incident to ASIGNADA.
func (s *IncidentService) Assign(ctx context.Context, caller *domain.User, incidentID, assigneeID string) (*domain.Incident, error) {
	incident, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanAssign(caller, incident); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	if incident.Status != domain.IncidentStatusPending && incident.Status != domain.IncidentStatusEscalated {
		return nil, apperrors.NewIllegalTransition(
			fmt.Sprintf("cannot assign incident in state %s", incident.Status), nil)
	}
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if assignee.Role != domain.RoleConcierge || !assignee.MemberOf(incident.BuildingID) || !assignee.Active {
		return nil, apperrors.NewValidationError(
			"assignee must be an active concierge of the incident's building", nil)
	}

	now := time.Now()
	incident.Status = domain.IncidentStatusAssigned
	incident.AssigneeID = &assignee.ID
	incident.AssignedAt = &now
	if err := s.incidents.Update(ctx, incident); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.systemComment(ctx, incident.ID, fmt.Sprintf("Incidencia asignada a %s", assignee.Name))
	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentAssigned,
		IncidentID: incident.ID,
		BuildingID: incident.BuildingID,
		ActorID:    caller.ID,
		Payload:    events.IncidentAssignedPayload{AssigneeID: assignee.ID},
	})
	return incident, nil
}

// Resolve closes an ASIGNADA incident directly by the assigned concierge.
func (s *IncidentService) Resolve(ctx context.Context, caller *domain.User, incidentID string, verifiedDescription *string, closingComment string) (*domain.Incident, error) {
	incident, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if incident.Status != domain.IncidentStatusAssigned {
		return nil, apperrors.NewIllegalTransition(
			fmt.Sprintf("cannot resolve incident in state %s", incident.Status), nil)
	}
	if d := authz.CanResolve(caller, incident); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	if len(strings.TrimSpace(closingComment)) < minClosingCommentLen {
		return nil, apperrors.NewValidationError("closing comment too short", map[string][]string{
			"closingComment": {fmt.Sprintf("must be at least %d characters", minClosingCommentLen)},
		})
	}

	now := time.Now()
	kind := domain.ResolutionKindConcierge
	comment := strings.TrimSpace(closingComment)
	incident.Status = domain.IncidentStatusResolved
	incident.VerifiedAt = &now
	incident.ResolutionKind = &kind
	incident.ClosingComment = &comment
	incident.ClosedAt = &now
	if verifiedDescription != nil {
		trimmed := strings.TrimSpace(*verifiedDescription)
		incident.VerifiedDescription = &trimmed
	}
	if err := s.incidents.Update(ctx, incident); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.systemComment(ctx, incident.ID, fmt.Sprintf("Resuelta por conserje: %s", comment))
	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentResolved,
		IncidentID: incident.ID,
		BuildingID: incident.BuildingID,
		ActorID:    caller.ID,
		Payload: events.IncidentResolvedPayload{
			ResolutionKind: kind,
			ReporterID:     incident.ReportedByID,
		},
	})
	return incident, nil
}

// Escalate hands an ASIGNADA incident off to the administrators.
func (s *IncidentService) Escalate(ctx context.Context, caller *domain.User, incidentID, verifiedDescription string, priority *domain.IncidentPriority) (*domain.Incident, error) {
	incident, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if incident.Status != domain.IncidentStatusAssigned {
		return nil, apperrors.NewIllegalTransition(
			fmt.Sprintf("cannot escalate incident in state %s", incident.Status), nil)
	}
	if d := authz.CanResolve(caller, incident); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	trimmed := strings.TrimSpace(verifiedDescription)
	if len(trimmed) < minDescriptionLen {
		return nil, apperrors.NewValidationError("verified description too short", map[string][]string{
			"verifiedDescription": {fmt.Sprintf("must be at least %d characters", minDescriptionLen)},
		})
	}
	if priority != nil && !priority.IsValid() {
		return nil, apperrors.NewValidationError("unknown priority", nil)
	}

	now := time.Now()
	incident.Status = domain.IncidentStatusEscalated
	incident.VerifiedAt = &now
	incident.EscalatedAt = &now
	incident.VerifiedDescription = &trimmed
	if priority != nil && *priority == domain.IncidentPriorityUrgent {
		incident.Priority = domain.IncidentPriorityUrgent
	}
	if err := s.incidents.Update(ctx, incident); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.systemComment(ctx, incident.ID, fmt.Sprintf("Escalada a administración: %s", trimmed))
	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentEscalated,
		IncidentID: incident.ID,
		BuildingID: incident.BuildingID,
		ActorID:    caller.ID,
		Payload: events.IncidentEscalatedPayload{
			Urgent:     incident.Priority == domain.IncidentPriorityUrgent,
			ReporterID: incident.ReportedByID,
		},
	})
	return incident, nil
}

// Reject declines a PENDIENTE incident.
func (s *IncidentService) Reject(ctx context.Context, caller *domain.User, incidentID, reason string) (*domain.Incident, error) {
	incident, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanReject(caller, incident); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	if incident.Status != domain.IncidentStatusPending {
		return nil, apperrors.NewIllegalTransition(
			fmt.Sprintf("cannot reject incident in state %s", incident.Status), nil)
	}
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return nil, apperrors.NewValidationError("rejection reason required", map[string][]string{
			"rejectionReason": {"required"},
		})
	}

	now := time.Now()
	incident.Status = domain.IncidentStatusRejected
	incident.RejectedAt = &now
	incident.RejectionReason = &trimmed
	incident.ClosedAt = &now
	if err := s.incidents.Update(ctx, incident); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.systemComment(ctx, incident.ID, fmt.Sprintf("Rechazada: %s", trimmed))
	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentRejected,
		IncidentID: incident.ID,
		BuildingID: incident.BuildingID,
		ActorID:    caller.ID,
		Payload: events.IncidentRejectedPayload{
			ReporterID: incident.ReportedByID,
			Reason:     trimmed,
		},
	})
	return incident, nil
}

// Update applies the generic partial update. Residents may only change the
// description of their own PENDIENTE incidents; other roles may change any
// field, including the administrative force to CERRADA.
func (s *IncidentService) Update(ctx context.Context, caller *domain.User, incidentID string, input UpdateIncidentInput) (*domain.Incident, error) {
	incident, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanUpdate(caller, incident); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	if caller.Role == domain.RoleResident {
		if input.ServiceType != nil || input.Priority != nil || input.Status != nil || input.AssigneeID != nil {
			return nil, apperrors.NewForbidden("residents may only change the description")
		}
	}

	oldPriority := incident.Priority
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if len(trimmed) < minDescriptionLen {
			return nil, apperrors.NewValidationError("description too short", map[string][]string{
				"description": {fmt.Sprintf("must be at least %d characters", minDescriptionLen)},
			})
		}
		incident.Description = trimmed
	}
	if input.ServiceType != nil {
		if !input.ServiceType.IsValid() {
			return nil, apperrors.NewValidationError("unknown service type", nil)
		}
		incident.ServiceType = *input.ServiceType
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, apperrors.NewValidationError("unknown priority", nil)
		}
		incident.Priority = *input.Priority
	}
	if input.AssigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *input.AssigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", map[string]any{"user_id": *input.AssigneeID})
			}
			return nil, apperrors.MapError(err)
		}
		if assignee.Role != domain.RoleConcierge || !assignee.MemberOf(incident.BuildingID) {
			return nil, apperrors.NewValidationError(
				"assignee must be a concierge of the incident's building", nil)
		}
		incident.AssigneeID = &assignee.ID
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apperrors.NewValidationError("unknown status", nil)
		}
		if incident.Status.IsTerminal() && *input.Status != incident.Status {
			return nil, apperrors.NewIllegalTransition(
				fmt.Sprintf("incident in terminal state %s", incident.Status), nil)
		}
		incident.Status = *input.Status
	}

	// closedAt is set iff the state is terminal, whichever path set the state.
	now := time.Now()
	if incident.Status.IsTerminal() {
		if incident.ClosedAt == nil {
			incident.ClosedAt = &now
		}
	} else {
		incident.ClosedAt = nil
	}

	if err := s.incidents.Update(ctx, incident); err != nil {
		return nil, apperrors.MapError(err)
	}
	if oldPriority != domain.IncidentPriorityUrgent && incident.Priority == domain.IncidentPriorityUrgent {
		s.publishEvent(ctx, events.Event{
			Type:       events.EventIncidentPriorityRaised,
			IncidentID: incident.ID,
			BuildingID: incident.BuildingID,
			ActorID:    caller.ID,
			Payload:    events.IncidentPriorityRaisedPayload{NewPriority: incident.Priority},
		})
	}
	return incident, nil
}

// AddComment appends a user comment. Blocked entirely on CERRADA.
func (s *IncidentService) AddComment(ctx context.Context, caller *domain.User, incidentID, body string) (*domain.Comment, error) {
	incident, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanComment(caller, incident); !d.Allowed {
		if incident.Status == domain.IncidentStatusClosed {
			return nil, apperrors.NewIllegalTransition(d.Reason, nil)
		}
		return nil, apperrors.NewForbidden(d.Reason)
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, apperrors.NewValidationError("comment body required", map[string][]string{
			"body": {"required"},
		})
	}

	comment := &domain.Comment{
		IncidentID: incident.ID,
		AuthorID:   &caller.ID,
		Body:       trimmed,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentCommented,
		IncidentID: incident.ID,
		BuildingID: incident.BuildingID,
		ActorID:    caller.ID,
		Payload: events.IncidentCommentedPayload{
			CommentID:     comment.ID,
			CommenterRole: caller.Role,
			ReporterID:    incident.ReportedByID,
			AssigneeID:    incident.AssigneeID,
		},
	})
	return comment, nil
}

// Delete removes an incident. Residents are forbidden.
func (s *IncidentService) Delete(ctx context.Context, caller *domain.User, incidentID string) error {
	incident, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return err
	}
	if d := authz.CanDelete(caller, incident); !d.Allowed {
		return apperrors.NewForbidden(d.Reason)
	}
	if err := s.incidents.Delete(ctx, incidentID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Get returns the incident with its comment trail, enforcing view access.
func (s *IncidentService) Get(ctx context.Context, caller *domain.User, incidentID string) (*domain.Incident, []domain.Comment, error) {
	incident, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, nil, err
	}
	if d := authz.CanViewIncident(caller, incident); !d.Allowed {
		return nil, nil, apperrors.NewForbidden(d.Reason)
	}
	comments, err := s.comments.ListByIncident(ctx, incident.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return incident, comments, nil
}

// List returns incidents visible to the caller, URGENTE first, newest first
// within a tier.
func (s *IncidentService) List(ctx context.Context, caller *domain.User, filter IncidentListFilter) ([]domain.Incident, error) {
	repoFilter := repository.IncidentFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if caller.Role != domain.RolePlatformAdmin {
		repoFilter.BuildingIDs = caller.BuildingIDs
		if len(repoFilter.BuildingIDs) == 0 {
			return []domain.Incident{}, nil
		}
	}
	if filter.BuildingID != nil {
		if d := authz.CanAccessBuilding(caller, *filter.BuildingID); !d.Allowed {
			return nil, apperrors.NewForbidden(d.Reason)
		}
		repoFilter.BuildingIDs = []string{*filter.BuildingID}
	}
	if caller.Role == domain.RoleResident {
		repoFilter.ReportedByID = &caller.ID
	}
	incidents, err := s.incidents.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return incidents, nil
}

func (s *IncidentService) getIncident(ctx context.Context, id string) (*domain.Incident, error) {
	incident, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("incident", map[string]any{"incident_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return incident, nil
}

func (s *IncidentService) systemComment(ctx context.Context, incidentID, body string) {
	comment := &domain.Comment{
		IncidentID: incidentID,
		Body:       body,
		System:     true,
	}
	// audit trail write failures never fail the transition
	_ = s.comments.Create(ctx, comment)
}

func (s *IncidentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
