// Package authz centralizes permission decisions for lifecycle operations.
// Every mutating operation asks the gate before touching state, so the rules
// live in one unit-testable place instead of per-handler branching.
package authz

import (
	"github.com/condoops/incident-service/internal/domain"
)

// Decision is an explicit allow/deny result with the denial reason.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanAccessBuilding checks membership in the target building. Platform admins
// have implicit access everywhere; everyone else needs a membership row from
// the authenticated session, never a client-supplied id.
func CanAccessBuilding(caller *domain.User, buildingID string) Decision {
	if caller == nil {
		return deny("authentication required")
	}
	if caller.MemberOf(buildingID) {
		return allow()
	}
	return deny("no access to building")
}

// CanViewIncident checks read access: building access, and for residents
// ownership of the incident.
func CanViewIncident(caller *domain.User, incident *domain.Incident) Decision {
	if d := CanAccessBuilding(caller, incident.BuildingID); !d.Allowed {
		return d
	}
	if caller.Role == domain.RoleResident && incident.ReportedByID != caller.ID {
		return deny("residents can only view their own incidents")
	}
	return allow()
}

// CanCreateIncident checks that the caller may report in the building.
func CanCreateIncident(caller *domain.User, buildingID string) Decision {
	return CanAccessBuilding(caller, buildingID)
}

// CanAssign restricts assignment to administrators of the incident's building.
func CanAssign(caller *domain.User, incident *domain.Incident) Decision {
	if d := CanAccessBuilding(caller, incident.BuildingID); !d.Allowed {
		return d
	}
	if caller.Role != domain.RolePlatformAdmin && caller.Role != domain.RoleBuildingAdmin {
		return deny("only administrators can assign incidents")
	}
	return allow()
}

// CanResolve restricts concierge resolution/escalation to the assigned concierge.
func CanResolve(caller *domain.User, incident *domain.Incident) Decision {
	if caller == nil {
		return deny("authentication required")
	}
	if caller.Role != domain.RoleConcierge {
		return deny("only the assigned concierge can perform this operation")
	}
	if incident.AssigneeID == nil || *incident.AssigneeID != caller.ID {
		return deny("incident is not assigned to caller")
	}
	return allow()
}

// CanReject restricts rejection to administrators with building access.
func CanReject(caller *domain.User, incident *domain.Incident) Decision {
	return CanAssign(caller, incident)
}

// CanUpdate checks the generic-update path. Residents may only touch their own
// PENDIENTE incidents; field gating happens in the engine.
func CanUpdate(caller *domain.User, incident *domain.Incident) Decision {
	if d := CanAccessBuilding(caller, incident.BuildingID); !d.Allowed {
		return d
	}
	if caller.Role == domain.RoleResident {
		if incident.ReportedByID != caller.ID {
			return deny("residents can only update their own incidents")
		}
		if incident.Status != domain.IncidentStatusPending {
			return deny("residents can only update pending incidents")
		}
	}
	return allow()
}

// CanComment blocks commenting on closed incidents and limits residents to
// their own incidents.
func CanComment(caller *domain.User, incident *domain.Incident) Decision {
	if d := CanAccessBuilding(caller, incident.BuildingID); !d.Allowed {
		return d
	}
	if incident.Status == domain.IncidentStatusClosed {
		return deny("incident is closed for comments")
	}
	if caller.Role == domain.RoleResident && incident.ReportedByID != caller.ID {
		return deny("residents can only comment on their own incidents")
	}
	return allow()
}

// CanDelete forbids residents; everyone else needs building access.
func CanDelete(caller *domain.User, incident *domain.Incident) Decision {
	if caller == nil {
		return deny("authentication required")
	}
	if caller.Role == domain.RoleResident {
		return deny("residents cannot delete incidents")
	}
	return CanAccessBuilding(caller, incident.BuildingID)
}

// CanManageVisits restricts visit scheduling to administrators of the building.
func CanManageVisits(caller *domain.User, buildingID string) Decision {
	if d := CanAccessBuilding(caller, buildingID); !d.Allowed {
		return d
	}
	if caller.Role != domain.RolePlatformAdmin && caller.Role != domain.RoleBuildingAdmin {
		return deny("only administrators can manage visits")
	}
	return allow()
}

// CanManageInventory allows concierges and administrators of the building.
func CanManageInventory(caller *domain.User, buildingID string) Decision {
	if d := CanAccessBuilding(caller, buildingID); !d.Allowed {
		return d
	}
	if caller.Role == domain.RoleResident {
		return deny("residents cannot manage inventory")
	}
	return allow()
}
