package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/condoops/incident-service/internal/api/dto"
	"github.com/condoops/incident-service/internal/auth"
	"github.com/condoops/incident-service/internal/service"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

// NotificationsHandler manages per-user notification endpoints.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	unreadOnly := c.QueryBool("unread")
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("pageSize"), 20)
	notifications, err := h.service.ListForUser(c.Context(), principal.User.ID, unreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, dto.FromNotification(&notifications[i]))
	}
	return respondOK(c, items)
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.MarkRead(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return respondNoData(c)
}
