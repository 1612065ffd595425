package domain

import "time"

// Product is a spare part tracked per building.
type Product struct {
	ID         string
	BuildingID string
	Name       string
	Unit       string
	Stock      int
	MinStock   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StockMovementKind differentiates inbound and outbound movements.
type StockMovementKind string

const (
	StockMovementIn  StockMovementKind = "ENTRADA"
	StockMovementOut StockMovementKind = "SALIDA"
)

// IsValid checks if the movement kind is defined.
func (k StockMovementKind) IsValid() bool {
	return k == StockMovementIn || k == StockMovementOut
}

// StockMovement records a stock change. Inserting a movement and adjusting the
// product stock level happen in the same transaction.
type StockMovement struct {
	ID        string
	ProductID string
	Kind      StockMovementKind
	Quantity  int
	ActorID   string
	Note      string
	CreatedAt time.Time
}
