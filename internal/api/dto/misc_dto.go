package dto

import (
	"time"

	"github.com/condoops/incident-service/internal/domain"
)

// BuildingResponse is the wire representation of a building.
type BuildingResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationResponse is the wire representation of a notification.
type NotificationResponse struct {
	ID         string                  `json:"id"`
	IncidentID string                  `json:"incidentId"`
	Kind       domain.NotificationKind `json:"kind"`
	Read       bool                    `json:"read"`
	CreatedAt  time.Time               `json:"createdAt"`
}

// CreateProductRequest payload. The building comes from the route path.
type CreateProductRequest struct {
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"minStock"`
}

// ProductResponse is the wire representation of a spare part.
type ProductResponse struct {
	ID         string    `json:"id"`
	BuildingID string    `json:"buildingId"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	Stock      int       `json:"stock"`
	MinStock   int       `json:"minStock"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// RecordMovementRequest payload.
type RecordMovementRequest struct {
	Kind     domain.StockMovementKind `json:"kind"`
	Quantity int                      `json:"quantity"`
	Note     string                   `json:"note"`
}

// StockMovementResponse is the wire representation of a stock movement.
type StockMovementResponse struct {
	ID        string                   `json:"id"`
	ProductID string                   `json:"productId"`
	Kind      domain.StockMovementKind `json:"kind"`
	Quantity  int                      `json:"quantity"`
	ActorID   string                   `json:"actorId"`
	Note      string                   `json:"note"`
	CreatedAt time.Time                `json:"createdAt"`
}

// FromBuilding maps the domain building.
func FromBuilding(b *domain.Building) BuildingResponse {
	return BuildingResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		Active:    b.Active,
		CreatedAt: b.CreatedAt,
	}
}

// FromNotification maps the domain notification.
func FromNotification(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		IncidentID: n.IncidentID,
		Kind:       n.Kind,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt,
	}
}

// FromProduct maps the domain product.
func FromProduct(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		BuildingID: p.BuildingID,
		Name:       p.Name,
		Unit:       p.Unit,
		Stock:      p.Stock,
		MinStock:   p.MinStock,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// FromStockMovement maps the domain stock movement.
func FromStockMovement(m *domain.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Kind:      m.Kind,
		Quantity:  m.Quantity,
		ActorID:   m.ActorID,
		Note:      m.Note,
		CreatedAt: m.CreatedAt,
	}
}
