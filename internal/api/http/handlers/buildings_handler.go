package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/condoops/incident-service/internal/api/dto"
	"github.com/condoops/incident-service/internal/auth"
	"github.com/condoops/incident-service/internal/domain"
	"github.com/condoops/incident-service/internal/repository"
	"github.com/condoops/incident-service/internal/service"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

// BuildingsHandler manages building listing and per-building stats.
type BuildingsHandler struct {
	buildings repository.BuildingRepository
	stats     *service.StatsService
}

// NewBuildingsHandler constructs handler.
func NewBuildingsHandler(buildings repository.BuildingRepository, stats *service.StatsService) *BuildingsHandler {
	return &BuildingsHandler{buildings: buildings, stats: stats}
}

// List GET /buildings. Scoped to the caller's memberships; platform admins
// see every building.
func (h *BuildingsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var ids []string
	if principal.User.Role != domain.RolePlatformAdmin {
		ids = principal.User.BuildingIDs
		if ids == nil {
			ids = []string{}
		}
	}
	buildings, err := h.buildings.List(c.Context(), ids)
	if err != nil {
		return err
	}
	items := make([]dto.BuildingResponse, 0, len(buildings))
	for i := range buildings {
		items = append(items, dto.FromBuilding(&buildings[i]))
	}
	return respondOK(c, items)
}

// Stats GET /buildings/:id/stats.
func (h *BuildingsHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	stats, err := h.stats.BuildingStats(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return respondOK(c, stats)
}
