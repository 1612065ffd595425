package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/condoops/incident-service/internal/api/dto"
	"github.com/condoops/incident-service/internal/auth"
	"github.com/condoops/incident-service/internal/domain"
	"github.com/condoops/incident-service/internal/service"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

// IncidentsHandler manages incident endpoints, including lifecycle transitions.
type IncidentsHandler struct {
	service *service.IncidentService
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidentService *service.IncidentService) *IncidentsHandler {
	return &IncidentsHandler{service: incidentService}
}

// Create POST /incidents.
func (h *IncidentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	incident, err := h.service.Create(c.Context(), principal.User, service.CreateIncidentInput{
		BuildingID:  req.BuildingID,
		ServiceType: req.ServiceType,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, dto.FromIncident(incident))
}

// List GET /incidents.
func (h *IncidentsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	incidents, err := h.service.List(c.Context(), principal.User, parseIncidentQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.IncidentResponse, 0, len(incidents))
	for i := range incidents {
		items = append(items, dto.FromIncident(&incidents[i]))
	}
	return respondOK(c, items)
}

// Get GET /incidents/:id.
func (h *IncidentsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	incident, comments, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	detail := dto.IncidentDetailResponse{
		IncidentResponse: dto.FromIncident(incident),
		Comments:         make([]dto.CommentResponse, 0, len(comments)),
	}
	for i := range comments {
		detail.Comments = append(detail.Comments, dto.FromComment(&comments[i]))
	}
	return respondOK(c, detail)
}

// Update PATCH /incidents/:id.
func (h *IncidentsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	incident, err := h.service.Update(c.Context(), principal.User, c.Params("id"), service.UpdateIncidentInput{
		Description: req.Description,
		ServiceType: req.ServiceType,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return respondOK(c, dto.FromIncident(incident))
}

// Delete DELETE /incidents/:id.
func (h *IncidentsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Delete(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return respondNoData(c)
}

// Assign POST /incidents/:id/assign.
func (h *IncidentsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.AssigneeID) == "" {
		return apperrors.NewValidationError("assignee required", map[string][]string{
			"assigneeId": {"required"},
		})
	}
	incident, err := h.service.Assign(c.Context(), principal.User, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return respondOK(c, dto.FromIncident(incident))
}

// Resolve POST /incidents/:id/resolve.
func (h *IncidentsHandler) Resolve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ResolveIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	incident, err := h.service.Resolve(c.Context(), principal.User, c.Params("id"), req.VerifiedDescription, req.ClosingComment)
	if err != nil {
		return err
	}
	return respondOK(c, dto.FromIncident(incident))
}

// Escalate POST /incidents/:id/escalate.
func (h *IncidentsHandler) Escalate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EscalateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	incident, err := h.service.Escalate(c.Context(), principal.User, c.Params("id"), req.VerifiedDescription, req.Priority)
	if err != nil {
		return err
	}
	return respondOK(c, dto.FromIncident(incident))
}

// Reject POST /incidents/:id/reject.
func (h *IncidentsHandler) Reject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RejectIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	incident, err := h.service.Reject(c.Context(), principal.User, c.Params("id"), req.RejectionReason)
	if err != nil {
		return err
	}
	return respondOK(c, dto.FromIncident(incident))
}

// AddComment POST /incidents/:id/comments.
func (h *IncidentsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.Context(), principal.User, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return respondCreated(c, dto.FromComment(comment))
}

// ListComments GET /incidents/:id/comments.
func (h *IncidentsHandler) ListComments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	_, comments, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.FromComment(&comments[i]))
	}
	return respondOK(c, items)
}

func parseIncidentQuery(c *fiber.Ctx) service.IncidentListFilter {
	filter := service.IncidentListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.IncidentStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.IncidentPriority(strings.TrimSpace(part)))
		}
	}
	if buildingID := c.Query("buildingId"); buildingID != "" {
		filter.BuildingID = &buildingID
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("pageSize"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
