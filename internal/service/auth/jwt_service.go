package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing JWT session and reset tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the given user.
	// Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates an access token string and extracts the claims.
	// Returns ErrExpiredToken when the expiry has passed, ErrWrongTokenType
	// when the token was issued for another purpose, and ErrInvalidToken for
	// any malformed or mis-signed token.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateResetToken creates a signed, short-lived password-reset token.
	GenerateResetToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateResetToken validates a password-reset token string. Error
	// semantics match ValidateToken.
	ValidateResetToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the decoded claims of a verified token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType indicates the purpose of the token ("access" or "reset").
	// Used to prevent token misuse across different contexts.
	TokenType string `json:"type,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
