package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condoops/incident-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.GenerateToken("user-1", domain.RoleConcierge)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleConcierge, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	token, _, err := tm.GenerateToken("user-1", domain.RoleResident)
	require.NoError(t, err)

	other := NewTokenManager("another-secret", 60)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secreto123", 4)
	require.NoError(t, err)

	require.NoError(t, ComparePassword(hash, "secreto123"))
	assert.Error(t, ComparePassword(hash, "incorrecta"))
}
