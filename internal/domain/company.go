package domain

import "time"

// Company is an external service provider with a declared set of trades.
type Company struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	ServiceTypes []ServiceType
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Supports reports whether the company declares the given trade.
func (c *Company) Supports(t ServiceType) bool {
	if c == nil {
		return false
	}
	for _, st := range c.ServiceTypes {
		if st == t {
			return true
		}
	}
	return false
}
