package auth

import (
	"testing"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	cfg := config.JWTConfig{
		Secret:          "test-secret-key-at-least-32-chars",
		ExpirationHours: 8,
		Issuer:          "agua-loti",
	}
	return NewJWTService(cfg)
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		OperatorID:  uuid.New(),
		Username:    "operador1",
		Permissions: []string{PermissionInvoicesManage, PermissionPaymentsManage},
	}
}

func TestNewJWTService(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:          "test-secret",
		ExpirationHours: 8,
		Issuer:          "agua-loti",
	}

	svc := NewJWTService(cfg)

	assert.NotNil(t, svc)
	assert.Equal(t, []byte(cfg.Secret), svc.secret)
	assert.Equal(t, 8*time.Hour, svc.expiration)
	assert.Equal(t, cfg.Issuer, svc.issuer)
}

func TestNewJWTService_DefaultsExpiration(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})

	assert.Equal(t, 24*time.Hour, svc.expiration)
}

func TestGenerateToken(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, err := svc.GenerateToken(input)

	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, token.ExpiresAt.After(time.Now()))
}

func TestValidateToken_Success(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, err := svc.GenerateToken(input)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, input.OperatorID.String(), claims.OperatorID)
	assert.Equal(t, input.Username, claims.Username)
	assert.Equal(t, input.Permissions, claims.Permissions)
	assert.Equal(t, "agua-loti", claims.Issuer)

	parsed, err := claims.GetOperatorUUID()
	require.NoError(t, err)
	assert.Equal(t, input.OperatorID, parsed)
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	svc := newTestJWTService()
	svc.expiration = -1 * time.Hour

	token, err := svc.GenerateToken(newTestInput())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token.AccessToken)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_InvalidToken(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ValidateToken("invalid-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService(config.JWTConfig{
		Secret:          "a-completely-different-secret-key",
		ExpirationHours: 8,
		Issuer:          "agua-loti",
	})

	token, err := svc.GenerateToken(newTestInput())
	require.NoError(t, err)

	_, err = other.ValidateToken(token.AccessToken)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_HasPermission(t *testing.T) {
	claims := &Claims{
		Permissions: []string{PermissionInvoicesManage, PermissionPaymentsCancel},
	}

	assert.True(t, claims.HasPermission(PermissionInvoicesManage))
	assert.True(t, claims.HasPermission(PermissionPaymentsCancel))
	assert.False(t, claims.HasPermission(PermissionInvoicesPurge))

	assert.True(t, claims.HasAnyPermission(PermissionInvoicesPurge, PermissionPaymentsCancel))
	assert.False(t, claims.HasAnyPermission(PermissionInvoicesPurge, PermissionClientsManage))
}

func TestClaims_GetRemainingTTL(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateToken(newTestInput())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)

	ttl := claims.GetRemainingTTL()
	assert.Greater(t, ttl, 7*time.Hour)
	assert.LessOrEqual(t, ttl, 8*time.Hour)
}
