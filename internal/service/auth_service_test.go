package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condoops/incident-service/internal/config"
	"github.com/condoops/incident-service/internal/domain"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

func newAuthFixture() (*AuthService, *mockUserRepo) {
	users := newMockUserRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret",
			SessionTTLMinutes: 60,
			BcryptCost:        4,
		},
	}
	return NewAuthService(cfg, users), users
}

func TestRegisterDefaultsToResident(t *testing.T) {
	svc, _ := newAuthFixture()

	user, token, exp, err := svc.Register(context.Background(), "Rosa", "Rosa@Example.com", "secreto123")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleResident, user.Role)
	assert.Equal(t, "rosa@example.com", user.Email)
	assert.True(t, user.Active)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, _, err := svc.Register(context.Background(), "Rosa", "rosa@example.com", "corto")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	_, _, _, err := svc.Register(context.Background(), "Rosa", "rosa@example.com", "secreto123")
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), "Otra", "rosa@example.com", "secreto123")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture()
	registered, _, _, err := svc.Register(context.Background(), "Rosa", "rosa@example.com", "secreto123")
	require.NoError(t, err)

	user, token, _, err := svc.Login(context.Background(), "rosa@example.com", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleResident, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()
	_, _, _, err := svc.Register(context.Background(), "Rosa", "rosa@example.com", "secreto123")
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "rosa@example.com", "incorrecta")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestLoginSuspendedAccount(t *testing.T) {
	svc, users := newAuthFixture()
	registered, _, _, err := svc.Register(context.Background(), "Rosa", "rosa@example.com", "secreto123")
	require.NoError(t, err)
	users.users[registered.ID].Active = false

	_, _, _, err = svc.Login(context.Background(), "rosa@example.com", "secreto123")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}
