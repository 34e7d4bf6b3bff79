// Package api provides HTTP handlers for the API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/api/shared"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/mailer"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
	"github.com/taskflow/taskflow-api/internal/service/auth"
	"github.com/taskflow/taskflow-api/internal/store"
)

// dashboardRedirect is the post-login navigation hint for browser clients.
const dashboardRedirect = "/dashboard"

// Authenticator verifies an email/password pair, driving the lockout
// machine as a side effect. Implemented by auth.LoginService.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// AuthHandlerConfig carries the request-independent settings the handler
// needs.
type AuthHandlerConfig struct {
	// TokenLifetime sizes the session cookie's max age to match the token.
	TokenLifetime time.Duration

	// SecureCookies enables the Secure cookie attribute (production).
	SecureCookies bool

	// FrontendURL is the base URL embedded in password-reset links.
	FrontendURL string
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore     store.UserStore
	jwtService    auth.JWTService
	authenticator Authenticator
	hasher        auth.PasswordHasher
	mailQueue     mailer.Queue
	cfg           AuthHandlerConfig
	validator     *validator.Validate
	logger        *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	authenticator Authenticator,
	hasher auth.PasswordHasher,
	mailQueue mailer.Queue,
	cfg AuthHandlerConfig,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		userStore:     userStore,
		jwtService:    jwtService,
		authenticator: authenticator,
		hasher:        hasher,
		mailQueue:     mailQueue,
		cfg:           cfg,
		validator:     validator.New(),
		logger:        log.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := domain.NewUser(req.Email, req.FirstName, req.LastName, req.Age, req.Password)
	if err != nil {
		// The age gate gets its own status, matching the product rule.
		if errors.Is(err, domain.ErrUnderage) {
			shared.RespondWithError(w, r, http.StatusForbidden, err.Error())
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user data: "+err.Error())
		return
	}

	hashed, err := h.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already registered")
			return
		}
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		Message: "Account created successfully",
		User:    NewUserResponse(user),
	})
}

// Login handles POST /auth/login.
//
// Every failure path answers with the same generic message and status: wrong
// email, wrong password and locked account are deliberately
// indistinguishable to the caller. The attempt that trips the lockout
// threshold is answered no differently; the lock only denies the attempts
// that follow it.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountLocked) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, genericCredentialsMessage)
			return
		}
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to authenticate user", err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to generate authentication token", err)
		return
	}

	shared.SetAuthCookie(w, token, h.cfg.TokenLifetime, h.cfg.SecureCookies)

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Message:  "Login successful",
		Token:    token,
		User:     NewUserResponse(user),
		Redirect: dashboardRedirect,
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	shared.ClearAuthCookie(w, h.cfg.SecureCookies)

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Logged out successfully",
	})
}

// CurrentUser handles GET /auth/user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetPrincipal(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in request context")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		User: NewUserResponse(user),
	})
}

// Verify handles GET /auth/verify. Reaching it at all means the auth
// middleware accepted the token.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetPrincipal(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in request context")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, VerifyResponse{
		Valid: true,
		User:  NewUserResponse(user),
	})
}

// ForgotPassword handles POST /auth/forgot-password.
//
// The response is identical whether or not the email is registered, and it
// never waits on email delivery; both would leak account existence.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ForgotPasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithErrorAndLog(w, r,
				http.StatusInternalServerError, "Failed to process request", err)
			return
		}
		// Unknown email: same acknowledgement as the happy path.
	} else {
		token, err := h.jwtService.GenerateResetToken(r.Context(), user.ID)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r,
				http.StatusInternalServerError, "Failed to process request", err)
			return
		}

		link := fmt.Sprintf("%s/auth/reset-password/%s", h.cfg.FrontendURL, token)
		msg := mailer.NewPasswordResetMessage(user.Email, user.FirstName, link)
		if err := h.mailQueue.Enqueue(msg); err != nil {
			// Fire-and-forget: a full queue must not leak into the response.
			log.Warn("failed to enqueue password reset email", "error", err)
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "If that email is registered, we have sent reset instructions",
	})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ResetPasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	claims, err := h.jwtService.ValidateResetToken(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Reset link has expired")
			return
		}
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid reset link")
		return
	}

	if err := domain.ValidatePassword(req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid password: "+err.Error())
		return
	}

	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	if err := h.userStore.UpdateCredentialHash(r.Context(), claims.UserID, hashed); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Account no longer exists")
			return
		}
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to reset password", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Password updated successfully",
	})
}
