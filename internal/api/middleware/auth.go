package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/api/shared"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
	"github.com/taskflow/taskflow-api/internal/redact"
	"github.com/taskflow/taskflow-api/internal/service/auth"
	"github.com/taskflow/taskflow-api/internal/store"
)

// loginRedirect is the navigation hint sent with expired-session responses so
// clients discard their stored token and return to the login page.
const loginRedirect = "/login"

// dashboardRedirect is where an already-authenticated guest is pointed.
const dashboardRedirect = "/dashboard"

// AuthMiddleware provides JWT authentication for routes. It verifies bearer
// tokens, resolves the account behind them and attaches it to the request as
// the authenticated principal. It never mutates lockout state.
type AuthMiddleware struct {
	jwtService auth.JWTService
	userStore  store.UserStore
	secure     bool
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
// secure controls the Secure attribute on cleared cookies and should be true
// in production.
func NewAuthMiddleware(jwtService auth.JWTService, userStore store.UserStore, secure bool) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		userStore:  userStore,
		secure:     secure,
	}
}

// Authenticate validates JWT tokens from the Authorization header, resolves
// the account and adds it to the request context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		token, ok := bearerToken(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization required")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				// Tell the client to drop its session state.
				shared.ClearAuthCookie(w, m.secure)
				shared.RespondWithRedirectError(w, r,
					http.StatusUnauthorized, "Token expired", loginRedirect)
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWrongTokenType):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				log.Error("failed to validate token", "error", redact.Error(err))
				shared.RespondWithError(w, r,
					http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		user, err := m.userStore.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				shared.RespondWithError(w, r, http.StatusNotFound, "Account no longer exists")
				return
			}
			log.Error("failed to resolve principal",
				"error", redact.Error(err),
				"user_id", claims.UserID)
			shared.RespondWithError(w, r,
				http.StatusInternalServerError, "Authentication error")
			return
		}

		// The principal never carries the credential hash.
		user.HashedPassword = ""

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, user.ID)
		ctx = context.WithValue(ctx, shared.PrincipalContextKey, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireGuest rejects requests that already carry a live session, pointing
// the client at the dashboard instead. The token is looked up in the session
// cookie first, then the Authorization header. Any verification failure is
// deliberately swallowed: an invalid or expired token simply means "not
// authenticated" here.
func (m *AuthMiddleware) RequireGuest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := cookieToken(r)
		if token == "" {
			token, _ = bearerToken(r)
		}

		if token != "" {
			if _, err := m.jwtService.ValidateToken(r.Context(), token); err == nil {
				shared.RespondWithRedirectError(w, r,
					http.StatusFound, "Already authenticated", dashboardRedirect)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// GetUserID extracts the user ID from the request context.
// Returns the user ID and a boolean indicating if it was found.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return userID, ok
}

// GetPrincipal extracts the authenticated user from the request context.
// Returns the user and a boolean indicating if it was found.
func GetPrincipal(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(shared.PrincipalContextKey).(*domain.User)
	return user, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	return parts[1], true
}

// cookieToken extracts the token from the session cookie, if present.
func cookieToken(r *http.Request) string {
	cookie, err := r.Cookie(shared.AuthCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
