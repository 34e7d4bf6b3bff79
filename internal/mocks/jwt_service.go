package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing
type MockJWTService struct {
	// GenerateTokenFn allows test cases to mock the GenerateToken behavior
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// GenerateResetTokenFn allows test cases to mock the GenerateResetToken behavior
	GenerateResetTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateResetTokenFn allows test cases to mock the ValidateResetToken behavior
	ValidateResetTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Token       string
	ResetToken  string
	Err         error
	ValidateErr error
	Claims      *auth.Claims
}

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}

	return m.Token, m.Err
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}

	return m.Claims, m.ValidateErr
}

// GenerateResetToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateResetToken(
	ctx context.Context,
	userID uuid.UUID,
) (string, error) {
	if m.GenerateResetTokenFn != nil {
		return m.GenerateResetTokenFn(ctx, userID)
	}

	return m.ResetToken, m.Err
}

// ValidateResetToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateResetToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	if m.ValidateResetTokenFn != nil {
		return m.ValidateResetTokenFn(ctx, tokenString)
	}

	return m.Claims, m.ValidateErr
}
