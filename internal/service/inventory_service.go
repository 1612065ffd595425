package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/condoops/incident-service/internal/authz"
	"github.com/condoops/incident-service/internal/domain"
	"github.com/condoops/incident-service/internal/repository"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

// InventoryService manages spare parts and stock movements. A movement and
// the resulting stock level change are committed in the same transaction.
type InventoryService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	tx        repository.TxManager
}

// NewInventoryService constructs the service.
func NewInventoryService(products repository.ProductRepository, movements repository.StockMovementRepository, tx repository.TxManager) *InventoryService {
	return &InventoryService{products: products, movements: movements, tx: tx}
}

// CreateProductInput describes a new spare part.
type CreateProductInput struct {
	BuildingID string
	Name       string
	Unit       string
	Stock      int
	MinStock   int
}

// CreateProduct registers a spare part for a building.
func (s *InventoryService) CreateProduct(ctx context.Context, caller *domain.User, input CreateProductInput) (*domain.Product, error) {
	if d := authz.CanManageInventory(caller, input.BuildingID); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("product name required", map[string][]string{
			"name": {"required"},
		})
	}
	if input.Stock < 0 || input.MinStock < 0 {
		return nil, apperrors.NewValidationError("stock levels cannot be negative", nil)
	}
	product := &domain.Product{
		BuildingID: input.BuildingID,
		Name:       name,
		Unit:       strings.TrimSpace(input.Unit),
		Stock:      input.Stock,
		MinStock:   input.MinStock,
	}
	if product.Unit == "" {
		product.Unit = "unidad"
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.MapError(err)
	}
	return product, nil
}

// ListProducts returns the building's spare parts.
func (s *InventoryService) ListProducts(ctx context.Context, caller *domain.User, buildingID string) ([]domain.Product, error) {
	if d := authz.CanAccessBuilding(caller, buildingID); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	products, err := s.products.ListByBuilding(ctx, buildingID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return products, nil
}

// RecordMovementInput describes a stock change.
type RecordMovementInput struct {
	ProductID string
	Kind      domain.StockMovementKind
	Quantity  int
	Note      string
}

// RecordMovement applies a stock movement atomically: the movement row and
// the product stock update either both commit or neither does. A SALIDA
// larger than the current stock is a conflict.
func (s *InventoryService) RecordMovement(ctx context.Context, caller *domain.User, input RecordMovementInput) (*domain.StockMovement, error) {
	if !input.Kind.IsValid() {
		return nil, apperrors.NewValidationError("unknown movement kind", nil)
	}
	if input.Quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", map[string][]string{
			"quantity": {"must be positive"},
		})
	}
	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"product_id": input.ProductID})
		}
		return nil, apperrors.MapError(err)
	}
	if d := authz.CanManageInventory(caller, product.BuildingID); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}

	newStock := product.Stock
	switch input.Kind {
	case domain.StockMovementIn:
		newStock += input.Quantity
	case domain.StockMovementOut:
		newStock -= input.Quantity
	}
	if newStock < 0 {
		return nil, apperrors.NewConflict("insufficient stock", map[string]any{
			"product":   product.Name,
			"stock":     product.Stock,
			"requested": input.Quantity,
		})
	}

	movement := &domain.StockMovement{
		ProductID: product.ID,
		Kind:      input.Kind,
		Quantity:  input.Quantity,
		ActorID:   caller.ID,
		Note:      strings.TrimSpace(input.Note),
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.movements.Create(ctx, movement); err != nil {
			return err
		}
		return s.products.UpdateStock(ctx, product.ID, newStock)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return movement, nil
}

// ListMovements returns a product's movement history.
func (s *InventoryService) ListMovements(ctx context.Context, caller *domain.User, productID string, limit, offset int) ([]domain.StockMovement, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"product_id": productID})
		}
		return nil, apperrors.MapError(err)
	}
	if d := authz.CanAccessBuilding(caller, product.BuildingID); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	movements, err := s.movements.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return movements, nil
}
