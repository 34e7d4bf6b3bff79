package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrWrongTokenType indicates a token was presented in a context it was
	// not issued for (e.g. a reset token on an authenticated route)
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidCredentials indicates the email/password pair did not match.
	// It deliberately does not say which half was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountLocked indicates the account is inside an active lock window.
	// The API maps this to the same response as ErrInvalidCredentials so the
	// lockout mechanics stay unobservable.
	ErrAccountLocked = errors.New("account temporarily locked")
)
