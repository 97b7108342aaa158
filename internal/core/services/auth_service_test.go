package services

import (
	"testing"
	"time"

	"classhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour, 24*time.Hour)

	token, err := svc.GenerateToken("u1", "alice@example.com", "Alice Smith")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u1"), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice Smith", claims.FullName)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour, 24*time.Hour)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	minter := NewAuthService("secret-a", time.Hour, 24*time.Hour)
	verifier := NewAuthService("secret-b", time.Hour, 24*time.Hour)

	token, err := minter.GenerateToken("u1", "alice@example.com", "Alice")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewAuthService("test-secret", -time.Minute, 24*time.Hour)

	token, err := svc.GenerateToken("u1", "alice@example.com", "Alice")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRefreshTokenCarriesOnlyUserID(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour, 24*time.Hour)

	token, err := svc.GenerateRefreshToken("u1")
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u1"), claims.UserID)
	assert.Empty(t, claims.Email)
}
