package dto

import (
	"time"

	"github.com/condoops/incident-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the wire representation of a user.
type UserResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	Active      bool        `json:"active"`
	BuildingIDs []string    `json:"buildingIds"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// SessionResponse is returned by login and register.
type SessionResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// FromUser maps the domain user.
func FromUser(user *domain.User) UserResponse {
	ids := user.BuildingIDs
	if ids == nil {
		ids = []string{}
	}
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Active:      user.Active,
		BuildingIDs: ids,
		CreatedAt:   user.CreatedAt,
	}
}
