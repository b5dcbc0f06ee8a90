package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndParse(t *testing.T) {
	// Arrange
	service, err := NewJWTService("test-secret", 1)
	require.NoError(t, err)

	// Act
	token, err := service.GenerateToken(42, "student", "user")
	require.NoError(t, err)

	claims, err := service.ParseToken(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "student", claims.Username)
	assert.Equal(t, "user", claims.Role)
	assert.NotEmpty(t, claims.ID, "jti должен быть установлен")
}

func TestJWTService_ParseToken_WrongSecret(t *testing.T) {
	// Arrange
	issuer, err := NewJWTService("secret-a", 1)
	require.NoError(t, err)
	verifier, err := NewJWTService("secret-b", 1)
	require.NoError(t, err)

	token, err := issuer.GenerateToken(1, "u", "user")
	require.NoError(t, err)

	// Act
	_, err = verifier.ParseToken(token)

	// Assert
	assert.Error(t, err, "токен с чужой подписью должен отклоняться")
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	// Act
	_, err := NewJWTService("", 1)

	// Assert
	assert.Error(t, err)
}
