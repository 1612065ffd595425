package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/condoops/incident-service/internal/api/dto"
	"github.com/condoops/incident-service/internal/auth"
	"github.com/condoops/incident-service/internal/service"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

// InventoryHandler manages spare-part products and stock movements.
type InventoryHandler struct {
	service *service.InventoryService
}

// NewInventoryHandler constructs handler.
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: inventoryService}
}

// CreateProduct POST /buildings/:id/products.
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	product, err := h.service.CreateProduct(c.Context(), principal.User, service.CreateProductInput{
		BuildingID: c.Params("id"),
		Name:       req.Name,
		Unit:       req.Unit,
		Stock:      req.Stock,
		MinStock:   req.MinStock,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, dto.FromProduct(product))
}

// ListProducts GET /buildings/:id/products.
func (h *InventoryHandler) ListProducts(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	products, err := h.service.ListProducts(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, dto.FromProduct(&products[i]))
	}
	return respondOK(c, items)
}

// RecordMovement POST /products/:id/movements.
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RecordMovementRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	movement, err := h.service.RecordMovement(c.Context(), principal.User, service.RecordMovementInput{
		ProductID: c.Params("id"),
		Kind:      req.Kind,
		Quantity:  req.Quantity,
		Note:      req.Note,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, dto.FromStockMovement(movement))
}

// ListMovements GET /products/:id/movements.
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("pageSize"), 20)
	movements, err := h.service.ListMovements(c.Context(), principal.User, c.Params("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, dto.FromStockMovement(&movements[i]))
	}
	return respondOK(c, items)
}
