package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condoops/incident-service/internal/domain"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

type visitFixture struct {
	service   *VisitService
	visits    *mockVisitRepo
	incidents *mockIncidentRepo
	comments  *mockCommentRepo

	admin *domain.User
}

func newVisitFixture(t *testing.T) *visitFixture {
	t.Helper()
	admin := &domain.User{ID: "admin-1", Role: domain.RoleBuildingAdmin, BuildingIDs: []string{"b1"}, Active: true}
	company := &domain.Company{
		ID:           "comp-1",
		Name:         "Electrototal",
		Active:       true,
		ServiceTypes: []domain.ServiceType{domain.ServiceTypeElectricity, domain.ServiceTypePlumbing},
	}

	visits := newMockVisitRepo()
	incidents := newMockIncidentRepo()
	comments := newMockCommentRepo()

	svc := NewVisitService(VisitDependencies{
		VisitRepo:    visits,
		IncidentRepo: incidents,
		CompanyRepo:  newMockCompanyRepo(company),
		CommentRepo:  comments,
		TxManager:    mockTxManager{},
	})
	return &visitFixture{service: svc, visits: visits, incidents: incidents, comments: comments, admin: admin}
}

func (f *visitFixture) seedIncident(t *testing.T, serviceType domain.ServiceType) *domain.Incident {
	t.Helper()
	incident := &domain.Incident{
		BuildingID:   "b1",
		ReportedByID: "res-1",
		ServiceType:  serviceType,
		Description:  "Luz del pasillo no funciona",
		Priority:     domain.IncidentPriorityNormal,
		Status:       domain.IncidentStatusPending,
	}
	require.NoError(t, f.incidents.Create(context.Background(), incident))
	return incident
}

func (f *visitFixture) schedule(t *testing.T, incidentIDs ...string) *domain.Visit {
	t.Helper()
	visit, err := f.service.Create(context.Background(), f.admin, CreateVisitInput{
		BuildingID:  "b1",
		CompanyID:   "comp-1",
		ScheduledAt: time.Now().Add(24 * time.Hour),
		IncidentIDs: incidentIDs,
	})
	require.NoError(t, err)
	return visit
}

func TestCreateVisitLinksIncidents(t *testing.T) {
	f := newVisitFixture(t)
	incident := f.seedIncident(t, domain.ServiceTypeElectricity)

	visit := f.schedule(t, incident.ID)

	assert.Equal(t, domain.VisitStatusScheduled, visit.Status)

	linked, err := f.incidents.GetByID(context.Background(), incident.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusScheduled, linked.Status)
	require.NotNil(t, linked.VisitID)
	assert.Equal(t, visit.ID, *linked.VisitID)
	assert.Nil(t, linked.ClosedAt)

	comments := f.comments.byIncident(incident.ID)
	require.Len(t, comments, 1)
	assert.True(t, comments[0].System)
}

func TestCreateVisitRejectsUncoveredServiceTypes(t *testing.T) {
	f := newVisitFixture(t)
	covered := f.seedIncident(t, domain.ServiceTypeElectricity)
	uncovered := f.seedIncident(t, domain.ServiceTypeGardening)

	_, err := f.service.Create(context.Background(), f.admin, CreateVisitInput{
		BuildingID:  "b1",
		CompanyID:   "comp-1",
		ScheduledAt: time.Now().Add(24 * time.Hour),
		IncidentIDs: []string{covered.ID, uncovered.ID},
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Message, "JARDINERIA")
	assert.Contains(t, domainErr.Fields["incidentIds"], "JARDINERIA")

	// nothing was linked
	fresh, err := f.incidents.GetByID(context.Background(), covered.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusPending, fresh.Status)
	assert.Nil(t, fresh.VisitID)
}

func TestCreateVisitRejectsOtherBuildingIncident(t *testing.T) {
	f := newVisitFixture(t)
	foreign := &domain.Incident{
		BuildingID:   "b2",
		ReportedByID: "res-2",
		ServiceType:  domain.ServiceTypeElectricity,
		Description:  "Luz de la entrada no funciona",
		Priority:     domain.IncidentPriorityNormal,
		Status:       domain.IncidentStatusPending,
	}
	require.NoError(t, f.incidents.Create(context.Background(), foreign))

	_, err := f.service.Create(context.Background(), f.admin, CreateVisitInput{
		BuildingID:  "b1",
		CompanyID:   "comp-1",
		ScheduledAt: time.Now().Add(24 * time.Hour),
		IncidentIDs: []string{foreign.ID},
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestCreateVisitRejectsTerminalIncident(t *testing.T) {
	f := newVisitFixture(t)
	incident := f.seedIncident(t, domain.ServiceTypeElectricity)
	incident.Status = domain.IncidentStatusResolved
	require.NoError(t, f.incidents.Update(context.Background(), incident))

	_, err := f.service.Create(context.Background(), f.admin, CreateVisitInput{
		BuildingID:  "b1",
		CompanyID:   "comp-1",
		ScheduledAt: time.Now().Add(24 * time.Hour),
		IncidentIDs: []string{incident.ID},
	})
	require.Error(t, err)
	assert.Equal(t, "ILLEGAL_TRANSITION", apperrors.ToDomainError(err).Code)
}

func TestCreateVisitRequiresAdmin(t *testing.T) {
	f := newVisitFixture(t)
	concierge := &domain.User{ID: "con-1", Role: domain.RoleConcierge, BuildingIDs: []string{"b1"}, Active: true}

	_, err := f.service.Create(context.Background(), concierge, CreateVisitInput{
		BuildingID:  "b1",
		CompanyID:   "comp-1",
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestCompleteVisitResolvesLinkedIncidents(t *testing.T) {
	f := newVisitFixture(t)
	first := f.seedIncident(t, domain.ServiceTypeElectricity)
	second := f.seedIncident(t, domain.ServiceTypePlumbing)
	visit := f.schedule(t, first.ID, second.ID)

	completed := domain.VisitStatusCompleted
	_, err := f.service.Update(context.Background(), f.admin, visit.ID, UpdateVisitInput{Status: &completed})
	require.NoError(t, err)

	for _, id := range []string{first.ID, second.ID} {
		incident, err := f.incidents.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.IncidentStatusResolved, incident.Status)
		require.NotNil(t, incident.ResolutionKind)
		assert.Equal(t, domain.ResolutionKindCompany, *incident.ResolutionKind)
		assert.NotNil(t, incident.ClosedAt)
	}
}

func TestCancelVisitReturnsIncidentsToPending(t *testing.T) {
	f := newVisitFixture(t)
	incident := f.seedIncident(t, domain.ServiceTypeElectricity)
	visit := f.schedule(t, incident.ID)

	cancelled := domain.VisitStatusCancelled
	_, err := f.service.Update(context.Background(), f.admin, visit.ID, UpdateVisitInput{Status: &cancelled})
	require.NoError(t, err)

	detached, err := f.incidents.GetByID(context.Background(), incident.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusPending, detached.Status)
	assert.Nil(t, detached.VisitID)
	assert.Nil(t, detached.ClosedAt)
}

func TestUpdateTerminalVisitFails(t *testing.T) {
	f := newVisitFixture(t)
	visit := f.schedule(t)
	completed := domain.VisitStatusCompleted
	_, err := f.service.Update(context.Background(), f.admin, visit.ID, UpdateVisitInput{Status: &completed})
	require.NoError(t, err)

	notes := "nota tardía"
	_, err = f.service.Update(context.Background(), f.admin, visit.ID, UpdateVisitInput{Notes: &notes})
	require.Error(t, err)
	assert.Equal(t, "ILLEGAL_TRANSITION", apperrors.ToDomainError(err).Code)
}

func TestRelinkVisitSwapsIncidentSet(t *testing.T) {
	f := newVisitFixture(t)
	old := f.seedIncident(t, domain.ServiceTypeElectricity)
	visit := f.schedule(t, old.ID)
	replacement := f.seedIncident(t, domain.ServiceTypePlumbing)

	_, err := f.service.Update(context.Background(), f.admin, visit.ID, UpdateVisitInput{
		IncidentIDs: []string{replacement.ID},
	})
	require.NoError(t, err)

	detached, err := f.incidents.GetByID(context.Background(), old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusPending, detached.Status)
	assert.Nil(t, detached.VisitID)

	attached, err := f.incidents.GetByID(context.Background(), replacement.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusScheduled, attached.Status)
	require.NotNil(t, attached.VisitID)
	assert.Equal(t, visit.ID, *attached.VisitID)
}

func TestDeleteVisitDetachesIncidents(t *testing.T) {
	f := newVisitFixture(t)
	incident := f.seedIncident(t, domain.ServiceTypeElectricity)
	visit := f.schedule(t, incident.ID)

	require.NoError(t, f.service.Delete(context.Background(), f.admin, visit.ID))

	detached, err := f.incidents.GetByID(context.Background(), incident.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusPending, detached.Status)
	assert.Nil(t, detached.VisitID)

	_, err = f.service.Get(context.Background(), f.admin, visit.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestCreateVisitInactiveCompany(t *testing.T) {
	f := newVisitFixture(t)
	inactive := &domain.Company{ID: "comp-2", Name: "Cerrada SpA", Active: false}
	f.service.companies.(*mockCompanyRepo).companies[inactive.ID] = inactive

	_, err := f.service.Create(context.Background(), f.admin, CreateVisitInput{
		BuildingID:  "b1",
		CompanyID:   inactive.ID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}
