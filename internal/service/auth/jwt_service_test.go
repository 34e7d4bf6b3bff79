package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/config"
)

const testJWTSecret = "test-secret-that-is-at-least-32-characters-long"

func newTestJWTService(t *testing.T) *hmacJWTService {
	t.Helper()

	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:                 testJWTSecret,
		TokenLifetimeMinutes:      120,
		ResetTokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	impl, ok := svc.(*hmacJWTService)
	require.True(t, ok)
	return impl
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{
		JWTSecret:                 "too-short",
		TokenLifetimeMinutes:      120,
		ResetTokenLifetimeMinutes: 60,
	})
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	ctx := context.Background()
	userID := uuid.New()

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, 2*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestValidateTokenExpired(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	ctx := context.Background()

	issuedAt := time.Now().UTC()
	svc.timeFunc = func() time.Time { return issuedAt }

	token, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	// Jump past the lifetime plus the allowed clock skew.
	svc.timeFunc = func() time.Time {
		return issuedAt.Add(svc.tokenLifetime + svc.clockSkew + time.Minute)
	}

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWithinClockSkew(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	ctx := context.Background()

	issuedAt := time.Now().UTC()
	svc.timeFunc = func() time.Time { return issuedAt }

	token, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	// Just past expiry but inside the skew allowance still validates.
	svc.timeFunc = func() time.Time {
		return issuedAt.Add(svc.tokenLifetime + time.Minute)
	}

	_, err = svc.ValidateToken(ctx, token)
	assert.NoError(t, err)
}

func TestValidateTokenTamperedSignature(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = svc.ValidateToken(ctx, tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenMalformed(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)

	_, err := svc.ValidateToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenTypeSeparation(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	ctx := context.Background()
	userID := uuid.New()

	accessToken, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)

	resetToken, err := svc.GenerateResetToken(ctx, userID)
	require.NoError(t, err)

	// A reset token must not open a session and vice versa.
	_, err = svc.ValidateToken(ctx, resetToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.ValidateResetToken(ctx, accessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	claims, err := svc.ValidateResetToken(ctx, resetToken)
	require.NoError(t, err)
	assert.Equal(t, "reset", claims.TokenType)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestValidateTokenWrongKey(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	other, err := NewJWTService(config.AuthConfig{
		JWTSecret:                 "another-secret-that-is-at-least-32-chars!",
		TokenLifetimeMinutes:      120,
		ResetTokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
