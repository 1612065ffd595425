package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/condoops/incident-service/internal/domain"
)

func member(role domain.Role) *domain.User {
	return &domain.User{ID: "u1", Role: role, BuildingIDs: []string{"b1"}, Active: true}
}

func incidentIn(buildingID string) *domain.Incident {
	return &domain.Incident{ID: "inc-1", BuildingID: buildingID, ReportedByID: "u1", Status: domain.IncidentStatusPending}
}

func TestCanAccessBuilding(t *testing.T) {
	assert.True(t, CanAccessBuilding(member(domain.RoleResident), "b1").Allowed)
	assert.False(t, CanAccessBuilding(member(domain.RoleResident), "b2").Allowed)
	assert.False(t, CanAccessBuilding(nil, "b1").Allowed)

	platform := &domain.User{ID: "p1", Role: domain.RolePlatformAdmin, Active: true}
	assert.True(t, CanAccessBuilding(platform, "b1").Allowed, "platform admins have implicit access")
}

func TestCanViewIncidentResidentOwnership(t *testing.T) {
	incident := incidentIn("b1")

	owner := member(domain.RoleResident)
	assert.True(t, CanViewIncident(owner, incident).Allowed)

	other := &domain.User{ID: "u2", Role: domain.RoleResident, BuildingIDs: []string{"b1"}, Active: true}
	decision := CanViewIncident(other, incident)
	assert.False(t, decision.Allowed)
	assert.NotEmpty(t, decision.Reason)

	concierge := &domain.User{ID: "u3", Role: domain.RoleConcierge, BuildingIDs: []string{"b1"}, Active: true}
	assert.True(t, CanViewIncident(concierge, incident).Allowed)
}

func TestCanAssignAdminsOnly(t *testing.T) {
	incident := incidentIn("b1")

	assert.True(t, CanAssign(member(domain.RoleBuildingAdmin), incident).Allowed)
	assert.False(t, CanAssign(member(domain.RoleConcierge), incident).Allowed)
	assert.False(t, CanAssign(member(domain.RoleResident), incident).Allowed)

	foreignAdmin := &domain.User{ID: "u9", Role: domain.RoleBuildingAdmin, BuildingIDs: []string{"b2"}, Active: true}
	assert.False(t, CanAssign(foreignAdmin, incident).Allowed)
}

func TestCanResolveOnlyAssignedConcierge(t *testing.T) {
	incident := incidentIn("b1")
	assignee := "u1"
	incident.AssigneeID = &assignee

	assert.True(t, CanResolve(member(domain.RoleConcierge), incident).Allowed)
	assert.False(t, CanResolve(member(domain.RoleBuildingAdmin), incident).Allowed)

	other := &domain.User{ID: "u2", Role: domain.RoleConcierge, BuildingIDs: []string{"b1"}, Active: true}
	assert.False(t, CanResolve(other, incident).Allowed)

	incident.AssigneeID = nil
	assert.False(t, CanResolve(member(domain.RoleConcierge), incident).Allowed)
}

func TestCanUpdateResidentRules(t *testing.T) {
	incident := incidentIn("b1")

	assert.True(t, CanUpdate(member(domain.RoleResident), incident).Allowed)

	incident.Status = domain.IncidentStatusAssigned
	assert.False(t, CanUpdate(member(domain.RoleResident), incident).Allowed)
	assert.True(t, CanUpdate(member(domain.RoleBuildingAdmin), incident).Allowed)

	foreign := &domain.User{ID: "u2", Role: domain.RoleResident, BuildingIDs: []string{"b1"}, Active: true}
	incident.Status = domain.IncidentStatusPending
	assert.False(t, CanUpdate(foreign, incident).Allowed)
}

func TestCanCommentClosedIncident(t *testing.T) {
	incident := incidentIn("b1")
	incident.Status = domain.IncidentStatusClosed

	assert.False(t, CanComment(member(domain.RoleBuildingAdmin), incident).Allowed)

	incident.Status = domain.IncidentStatusResolved
	assert.True(t, CanComment(member(domain.RoleBuildingAdmin), incident).Allowed,
		"RESUELTA still accepts comments")
}

func TestCanDeleteForbidsResidents(t *testing.T) {
	incident := incidentIn("b1")

	assert.False(t, CanDelete(member(domain.RoleResident), incident).Allowed)
	assert.True(t, CanDelete(member(domain.RoleConcierge), incident).Allowed)
	assert.True(t, CanDelete(member(domain.RoleBuildingAdmin), incident).Allowed)
}

func TestCanManageVisitsAndInventory(t *testing.T) {
	assert.True(t, CanManageVisits(member(domain.RoleBuildingAdmin), "b1").Allowed)
	assert.False(t, CanManageVisits(member(domain.RoleConcierge), "b1").Allowed)
	assert.False(t, CanManageVisits(member(domain.RoleResident), "b1").Allowed)

	assert.True(t, CanManageInventory(member(domain.RoleConcierge), "b1").Allowed)
	assert.True(t, CanManageInventory(member(domain.RoleBuildingAdmin), "b1").Allowed)
	assert.False(t, CanManageInventory(member(domain.RoleResident), "b1").Allowed)
}
