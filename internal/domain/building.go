package domain

import "time"

// Building is a managed property with its own incidents, visits and members.
type Building struct {
	ID        string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
