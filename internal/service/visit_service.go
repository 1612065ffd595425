package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/condoops/incident-service/internal/authz"
	"github.com/condoops/incident-service/internal/domain"
	"github.com/condoops/incident-service/internal/repository"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

// VisitService couples scheduled company visits to incidents. Every mutation
// that touches both a visit and its incidents runs inside one transaction so
// partial application is impossible.
type VisitService struct {
	visits    repository.VisitRepository
	incidents repository.IncidentRepository
	companies repository.CompanyRepository
	comments  repository.CommentRepository
	tx        repository.TxManager
}

// VisitDependencies bundles repositories for visit workflows.
type VisitDependencies struct {
	VisitRepo    repository.VisitRepository
	IncidentRepo repository.IncidentRepository
	CompanyRepo  repository.CompanyRepository
	CommentRepo  repository.CommentRepository
	TxManager    repository.TxManager
}

// NewVisitService constructs the service.
func NewVisitService(deps VisitDependencies) *VisitService {
	return &VisitService{
		visits:    deps.VisitRepo,
		incidents: deps.IncidentRepo,
		companies: deps.CompanyRepo,
		comments:  deps.CommentRepo,
		tx:        deps.TxManager,
	}
}

// CreateVisitInput describes visit creation payload.
type CreateVisitInput struct {
	BuildingID  string
	CompanyID   string
	ScheduledAt time.Time
	Notes       string
	IncidentIDs []string
}

// UpdateVisitInput carries partial visit updates. A non-nil IncidentIDs
// relinks the visit's incident set.
type UpdateVisitInput struct {
	ScheduledAt *time.Time
	Notes       *string
	Status      *domain.VisitStatus
	IncidentIDs []string
}

// Create schedules a visit, optionally linking incidents. Linked incidents
// must carry a service type the company declares; otherwise the request is
// rejected naming every missing type.
func (s *VisitService) Create(ctx context.Context, caller *domain.User, input CreateVisitInput) (*domain.Visit, error) {
	if d := authz.CanManageVisits(caller, input.BuildingID); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	if input.ScheduledAt.IsZero() {
		return nil, apperrors.NewValidationError("scheduled date required", map[string][]string{
			"scheduledAt": {"required"},
		})
	}
	company, err := s.companies.GetByID(ctx, input.CompanyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("company", map[string]any{"company_id": input.CompanyID})
		}
		return nil, apperrors.MapError(err)
	}
	if !company.Active {
		return nil, apperrors.NewConflict("company inactive", map[string]any{"company_id": company.ID})
	}

	incidents, err := s.loadLinkable(ctx, company, input.BuildingID, input.IncidentIDs)
	if err != nil {
		return nil, err
	}

	visit := &domain.Visit{
		BuildingID:  input.BuildingID,
		CompanyID:   company.ID,
		ScheduledAt: input.ScheduledAt,
		Notes:       strings.TrimSpace(input.Notes),
		Status:      domain.VisitStatusScheduled,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.visits.Create(ctx, visit); err != nil {
			return err
		}
		return s.attach(ctx, visit.ID, incidents)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	visit.IncidentIDs = input.IncidentIDs
	return visit, nil
}

// Update applies partial changes. COMPLETADA cascades linked incidents to
// RESUELTA; CANCELADA detaches them back to PENDIENTE. A new incident set
// first detaches the old one, then attaches the new one.
func (s *VisitService) Update(ctx context.Context, caller *domain.User, visitID string, input UpdateVisitInput) (*domain.Visit, error) {
	visit, err := s.getVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanManageVisits(caller, visit.BuildingID); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	if visit.Status == domain.VisitStatusCompleted || visit.Status == domain.VisitStatusCancelled {
		return nil, apperrors.NewIllegalTransition(
			fmt.Sprintf("visit already %s", visit.Status), nil)
	}

	if input.ScheduledAt != nil {
		visit.ScheduledAt = *input.ScheduledAt
	}
	if input.Notes != nil {
		visit.Notes = strings.TrimSpace(*input.Notes)
	}

	var relink []domain.Incident
	if input.IncidentIDs != nil {
		company, err := s.companies.GetByID(ctx, visit.CompanyID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		relink, err = s.loadLinkable(ctx, company, visit.BuildingID, input.IncidentIDs)
		if err != nil {
			return nil, err
		}
	}

	newStatus := visit.Status
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apperrors.NewValidationError("unknown visit status", nil)
		}
		newStatus = *input.Status
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if input.IncidentIDs != nil {
			if err := s.detachAll(ctx, visit.ID); err != nil {
				return err
			}
			if err := s.attach(ctx, visit.ID, relink); err != nil {
				return err
			}
		}
		switch newStatus {
		case domain.VisitStatusCompleted:
			if err := s.completeLinked(ctx, visit.ID); err != nil {
				return err
			}
		case domain.VisitStatusCancelled:
			if err := s.detachAll(ctx, visit.ID); err != nil {
				return err
			}
		}
		visit.Status = newStatus
		return s.visits.Update(ctx, visit)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.getVisit(ctx, visit.ID)
}

// Delete cascades like a cancellation before removing the visit record.
func (s *VisitService) Delete(ctx context.Context, caller *domain.User, visitID string) error {
	visit, err := s.getVisit(ctx, visitID)
	if err != nil {
		return err
	}
	if d := authz.CanManageVisits(caller, visit.BuildingID); !d.Allowed {
		return apperrors.NewForbidden(d.Reason)
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.detachAll(ctx, visit.ID); err != nil {
			return err
		}
		return s.visits.Delete(ctx, visit.ID)
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Get returns a visit with its linked incidents, enforcing building access.
func (s *VisitService) Get(ctx context.Context, caller *domain.User, visitID string) (*domain.Visit, error) {
	visit, err := s.getVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanAccessBuilding(caller, visit.BuildingID); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	return visit, nil
}

// List returns visits scoped to the caller's buildings.
func (s *VisitService) List(ctx context.Context, caller *domain.User, limit, offset int) ([]domain.Visit, error) {
	var buildingIDs []string
	if caller.Role != domain.RolePlatformAdmin {
		buildingIDs = caller.BuildingIDs
		if len(buildingIDs) == 0 {
			return []domain.Visit{}, nil
		}
	}
	visits, err := s.visits.ListByBuildings(ctx, buildingIDs, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return visits, nil
}

// loadLinkable fetches the incidents and validates building, terminal state
// and company service-type coverage. Missing types are reported together.
func (s *VisitService) loadLinkable(ctx context.Context, company *domain.Company, buildingID string, incidentIDs []string) ([]domain.Incident, error) {
	incidents := make([]domain.Incident, 0, len(incidentIDs))
	missing := map[domain.ServiceType]struct{}{}
	for _, id := range incidentIDs {
		incident, err := s.incidents.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("incident", map[string]any{"incident_id": id})
			}
			return nil, apperrors.MapError(err)
		}
		if incident.BuildingID != buildingID {
			return nil, apperrors.NewValidationError(
				"incident belongs to another building", map[string][]string{
					"incidentIds": {fmt.Sprintf("incident %s is not in building %s", id, buildingID)},
				})
		}
		if incident.Status.IsTerminal() {
			return nil, apperrors.NewIllegalTransition(
				fmt.Sprintf("incident %s is in terminal state %s", id, incident.Status), nil)
		}
		if !company.Supports(incident.ServiceType) {
			missing[incident.ServiceType] = struct{}{}
		}
		incidents = append(incidents, *incident)
	}
	if len(missing) > 0 {
		types := make([]string, 0, len(missing))
		for t := range missing {
			types = append(types, string(t))
		}
		sort.Strings(types)
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("company does not cover service types: %s", strings.Join(types, ", ")),
			map[string][]string{"incidentIds": types})
	}
	return incidents, nil
}

func (s *VisitService) attach(ctx context.Context, visitID string, incidents []domain.Incident) error {
	for i := range incidents {
		incident := incidents[i]
		incident.Status = domain.IncidentStatusScheduled
		incident.VisitID = &visitID
		incident.ClosedAt = nil
		if err := s.incidents.Update(ctx, &incident); err != nil {
			return err
		}
		s.auditComment(ctx, incident.ID, "Visita de empresa programada")
	}
	return nil
}

func (s *VisitService) detachAll(ctx context.Context, visitID string) error {
	linked, err := s.incidents.ListByVisit(ctx, visitID)
	if err != nil {
		return err
	}
	for i := range linked {
		incident := linked[i]
		incident.Status = domain.IncidentStatusPending
		incident.VisitID = nil
		incident.ClosedAt = nil
		if err := s.incidents.Update(ctx, &incident); err != nil {
			return err
		}
		s.auditComment(ctx, incident.ID, "Visita cancelada, incidencia vuelve a pendiente")
	}
	return nil
}

func (s *VisitService) completeLinked(ctx context.Context, visitID string) error {
	linked, err := s.incidents.ListByVisit(ctx, visitID)
	if err != nil {
		return err
	}
	now := time.Now()
	kind := domain.ResolutionKindCompany
	for i := range linked {
		incident := linked[i]
		incident.Status = domain.IncidentStatusResolved
		incident.ResolutionKind = &kind
		incident.ClosedAt = &now
		if err := s.incidents.Update(ctx, &incident); err != nil {
			return err
		}
		s.auditComment(ctx, incident.ID, "Resuelta por visita de empresa externa")
	}
	return nil
}

func (s *VisitService) auditComment(ctx context.Context, incidentID, body string) {
	comment := &domain.Comment{
		IncidentID: incidentID,
		Body:       body,
		System:     true,
	}
	_ = s.comments.Create(ctx, comment)
}

func (s *VisitService) getVisit(ctx context.Context, id string) (*domain.Visit, error) {
	visit, err := s.visits.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("visit", map[string]any{"visit_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return visit, nil
}
