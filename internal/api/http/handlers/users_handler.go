package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/condoops/incident-service/internal/api/dto"
	"github.com/condoops/incident-service/internal/auth"
	"github.com/condoops/incident-service/internal/service"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

// UsersHandler manages registration, login and session endpoints.
type UsersHandler struct {
	service    *service.AuthService
	cookieName string
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, cookieName string) *UsersHandler {
	return &UsersHandler{service: authService, cookieName: cookieName}
}

// Register POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, token, expiresAt, err := h.service.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, token, expiresAt)
	return respondCreated(c, dto.SessionResponse{User: dto.FromUser(user), Token: token, ExpiresAt: expiresAt})
}

// Login POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	user, token, expiresAt, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, token, expiresAt)
	return respondOK(c, dto.SessionResponse{User: dto.FromUser(user), Token: token, ExpiresAt: expiresAt})
}

// Logout POST /auth/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return respondNoData(c)
}

// Me GET /auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	return respondOK(c, dto.FromUser(principal.User))
}

func (h *UsersHandler) setSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
