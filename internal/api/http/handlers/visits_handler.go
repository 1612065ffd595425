package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/condoops/incident-service/internal/api/dto"
	"github.com/condoops/incident-service/internal/auth"
	"github.com/condoops/incident-service/internal/service"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

// VisitsHandler manages company-visit endpoints.
type VisitsHandler struct {
	service *service.VisitService
}

// NewVisitsHandler constructs handler.
func NewVisitsHandler(visitService *service.VisitService) *VisitsHandler {
	return &VisitsHandler{service: visitService}
}

// Create POST /visits.
func (h *VisitsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	visit, err := h.service.Create(c.Context(), principal.User, service.CreateVisitInput{
		BuildingID:  req.BuildingID,
		CompanyID:   req.CompanyID,
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
		IncidentIDs: req.IncidentIDs,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, dto.FromVisit(visit))
}

// List GET /visits.
func (h *VisitsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("pageSize"), 20)
	visits, err := h.service.List(c.Context(), principal.User, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.VisitResponse, 0, len(visits))
	for i := range visits {
		items = append(items, dto.FromVisit(&visits[i]))
	}
	return respondOK(c, items)
}

// Get GET /visits/:id.
func (h *VisitsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	visit, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return respondOK(c, dto.FromVisit(visit))
}

// Update PATCH /visits/:id.
func (h *VisitsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	visit, err := h.service.Update(c.Context(), principal.User, c.Params("id"), service.UpdateVisitInput{
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
		Status:      req.Status,
		IncidentIDs: req.IncidentIDs,
	})
	if err != nil {
		return err
	}
	return respondOK(c, dto.FromVisit(visit))
}

// Delete DELETE /visits/:id.
func (h *VisitsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Delete(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return respondNoData(c)
}
