package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/condoops/incident-service/internal/domain"
	"github.com/condoops/incident-service/internal/repository"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller with memberships loaded from
// the session, never from the request body.
type Principal struct {
	User *domain.User
}

// AuthMiddleware validates session tokens and loads principals.
type AuthMiddleware struct {
	tokens     *TokenManager
	users      repository.UserRepository
	cookieName string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, cookieName string) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "session"
	}
	return &AuthMiddleware{tokens: tokens, users: users, cookieName: cookieName}
}

// Handle enforces authentication for protected routes. The session token is
// read from the session cookie or, as a fallback, the Authorization header.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := c.Cookies(m.cookieName)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenStr = parts[1]
		}
	}
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing session")
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("invalid session")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.Active {
		return apperrors.NewUnauthorized("account suspended")
	}

	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
