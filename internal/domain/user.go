package domain

import "time"

// Role enumerates platform roles, most to least privileged.
type Role string

const (
	RolePlatformAdmin Role = "ADMIN_PLATAFORMA"
	RoleBuildingAdmin Role = "ADMIN_EDIFICIO"
	RoleConcierge     Role = "CONSERJE"
	RoleResident      Role = "RESIDENTE"
)

// IsValid checks if the role is defined.
func (r Role) IsValid() bool {
	switch r {
	case RolePlatformAdmin, RoleBuildingAdmin, RoleConcierge, RoleResident:
		return true
	default:
		return false
	}
}

// User models any platform account: residents, concierges and administrators.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	BuildingIDs  []string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MemberOf reports whether the user holds a membership in the building.
// Platform admins have implicit access to every building.
func (u *User) MemberOf(buildingID string) bool {
	if u == nil {
		return false
	}
	if u.Role == RolePlatformAdmin {
		return true
	}
	for _, id := range u.BuildingIDs {
		if id == buildingID {
			return true
		}
	}
	return false
}
