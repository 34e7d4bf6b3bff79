package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/api/shared"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/mocks"
	"github.com/taskflow/taskflow-api/internal/service/auth"
	"github.com/taskflow/taskflow-api/internal/store"
)

// stubAuthenticator implements Authenticator for handler tests.
type stubAuthenticator struct {
	user *domain.User
	err  error
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.user, s.err
}

func testAuthHandlerConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		TokenLifetime: 2 * time.Hour,
		SecureCookies: false,
		FrontendURL:   "http://localhost:5173",
	}
}

func newJSONRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func registeredUser(t *testing.T) *domain.User {
	t.Helper()

	user, err := domain.NewUser("ada@example.com", "Ada", "Lovelace", 30, "Sup3rSecret")
	require.NoError(t, err)
	user.HashedPassword = "hashed:Sup3rSecret"
	user.Password = ""
	return user
}

func TestRegister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus int
	}{
		{
			name: "valid registration",
			payload: map[string]any{
				"first_name": "Ada",
				"last_name":  "Lovelace",
				"email":      "ada@example.com",
				"age":        30,
				"password":   "Sup3rSecret",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "invalid email",
			payload: map[string]any{
				"first_name": "Ada",
				"last_name":  "Lovelace",
				"email":      "not-an-email",
				"age":        30,
				"password":   "Sup3rSecret",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing password",
			payload: map[string]any{
				"first_name": "Ada",
				"last_name":  "Lovelace",
				"email":      "ada@example.com",
				"age":        30,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "underage",
			payload: map[string]any{
				"first_name": "Ada",
				"last_name":  "Lovelace",
				"email":      "ada@example.com",
				"age":        13,
				"password":   "Sup3rSecret",
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			userStore := mocks.NewMockUserStore()
			handler := NewAuthHandler(
				userStore,
				&mocks.MockJWTService{Token: "test-token"},
				&stubAuthenticator{},
				&mocks.MockPasswordHasher{},
				&mocks.MockMailQueue{},
				testAuthHandlerConfig(),
				nil,
			)

			req := newJSONRequest(t, http.MethodPost, "/api/auth/register", tc.payload)
			rr := httptest.NewRecorder()
			handler.Register(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)

			if tc.wantStatus == http.StatusCreated {
				var resp AuthResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "ada@example.com", resp.User.Email)

				// The stored credential must be the hash, never the plaintext.
				stored, err := userStore.GetByEmail(req.Context(), "ada@example.com")
				require.NoError(t, err)
				assert.Equal(t, "hashed:Sup3rSecret", stored.HashedPassword)
				assert.Empty(t, stored.Password)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	userStore.AddUser(registeredUser(t))

	handler := NewAuthHandler(
		userStore,
		&mocks.MockJWTService{},
		&stubAuthenticator{},
		&mocks.MockPasswordHasher{},
		&mocks.MockMailQueue{},
		testAuthHandlerConfig(),
		nil,
	)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "Ada@Example.com",
		"age":        30,
		"password":   "Sup3rSecret",
	})
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	user := registeredUser(t)
	handler := NewAuthHandler(
		mocks.NewMockUserStore(),
		&mocks.MockJWTService{Token: "signed-token"},
		&stubAuthenticator{user: user},
		&mocks.MockPasswordHasher{},
		&mocks.MockMailQueue{},
		testAuthHandlerConfig(),
		nil,
	)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "ada@example.com",
		"password": "Sup3rSecret",
	})
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "signed-token", resp.Token)
	assert.Equal(t, dashboardRedirect, resp.Redirect)
	assert.Equal(t, user.Email, resp.User.Email)

	// The session cookie is set with the token.
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, shared.AuthCookieName, cookies[0].Name)
	assert.Equal(t, "signed-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{name: "invalid credentials", err: auth.ErrInvalidCredentials},
		{name: "locked account", err: auth.ErrAccountLocked},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := NewAuthHandler(
				mocks.NewMockUserStore(),
				&mocks.MockJWTService{},
				&stubAuthenticator{err: tc.err},
				&mocks.MockPasswordHasher{},
				&mocks.MockMailQueue{},
				testAuthHandlerConfig(),
				nil,
			)

			req := newJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
				"email":    "ada@example.com",
				"password": "WrongPassword1",
			})
			rr := httptest.NewRecorder()
			handler.Login(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)

			var resp shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, "Invalid email or password", resp.Error)
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	t.Parallel()

	handler := NewAuthHandler(
		mocks.NewMockUserStore(),
		&mocks.MockJWTService{},
		&stubAuthenticator{},
		&mocks.MockPasswordHasher{},
		&mocks.MockMailQueue{},
		testAuthHandlerConfig(),
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()
	handler.Logout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, shared.AuthCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	user := registeredUser(t)
	handler := NewAuthHandler(
		mocks.NewMockUserStore(),
		&mocks.MockJWTService{},
		&stubAuthenticator{},
		&mocks.MockPasswordHasher{},
		&mocks.MockMailQueue{},
		testAuthHandlerConfig(),
		nil,
	)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	ctx := context.WithValue(req.Context(), shared.PrincipalContextKey, user)
	rr := httptest.NewRecorder()
	handler.CurrentUser(rr, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rr.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, user.Email, resp.User.Email)

	// Without a principal the handler refuses.
	rr = httptest.NewRecorder()
	handler.CurrentUser(rr, httptest.NewRequest(http.MethodGet, "/api/auth/user", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	user := registeredUser(t)
	handler := NewAuthHandler(
		mocks.NewMockUserStore(),
		&mocks.MockJWTService{},
		&stubAuthenticator{},
		&mocks.MockPasswordHasher{},
		&mocks.MockMailQueue{},
		testAuthHandlerConfig(),
		nil,
	)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	ctx := context.WithValue(req.Context(), shared.PrincipalContextKey, user)
	rr := httptest.NewRecorder()
	handler.Verify(rr, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rr.Code)

	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, user.Email, resp.User.Email)
}

func TestForgotPasswordKnownEmail(t *testing.T) {
	t.Parallel()

	user := registeredUser(t)
	userStore := mocks.NewMockUserStore()
	userStore.AddUser(user)
	mailQueue := &mocks.MockMailQueue{}

	handler := NewAuthHandler(
		userStore,
		&mocks.MockJWTService{ResetToken: "reset-token"},
		&stubAuthenticator{},
		&mocks.MockPasswordHasher{},
		mailQueue,
		testAuthHandlerConfig(),
		nil,
	)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/forgot-password", map[string]any{
		"email": "ada@example.com",
	})
	rr := httptest.NewRecorder()
	handler.ForgotPassword(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	msgs := mailQueue.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, user.Email, msgs[0].To)
	assert.Contains(t, msgs[0].HTML, "http://localhost:5173/auth/reset-password/reset-token")
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	t.Parallel()

	mailQueue := &mocks.MockMailQueue{}
	handler := NewAuthHandler(
		mocks.NewMockUserStore(),
		&mocks.MockJWTService{},
		&stubAuthenticator{},
		&mocks.MockPasswordHasher{},
		mailQueue,
		testAuthHandlerConfig(),
		nil,
	)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/forgot-password", map[string]any{
		"email": "nobody@example.com",
	})
	rr := httptest.NewRecorder()
	handler.ForgotPassword(rr, req)

	// Identical acknowledgement, no email sent.
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, mailQueue.Messages())

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "If that email is registered")
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	user := registeredUser(t)
	userStore := mocks.NewMockUserStore()
	userStore.AddUser(user)

	jwtService := &mocks.MockJWTService{
		Claims: &auth.Claims{UserID: user.ID, TokenType: "reset"},
	}

	handler := NewAuthHandler(
		userStore,
		jwtService,
		&stubAuthenticator{},
		&mocks.MockPasswordHasher{},
		&mocks.MockMailQueue{},
		testAuthHandlerConfig(),
		nil,
	)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/reset-password", map[string]any{
		"token":    "reset-token",
		"password": "N3wPassword",
	})
	rr := httptest.NewRecorder()
	handler.ResetPassword(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	stored, err := userStore.GetByID(req.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:N3wPassword", stored.HashedPassword)
	assert.Zero(t, stored.FailedLoginAttempts, "reset clears lockout counters")
	assert.Nil(t, stored.LockedUntil)
}

func TestResetPasswordInvalidToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantBody string
	}{
		{name: "expired token", err: auth.ErrExpiredToken, wantBody: "Reset link has expired"},
		{name: "invalid token", err: auth.ErrInvalidToken, wantBody: "Invalid reset link"},
		{name: "access token used as reset", err: auth.ErrWrongTokenType, wantBody: "Invalid reset link"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := NewAuthHandler(
				mocks.NewMockUserStore(),
				&mocks.MockJWTService{ValidateErr: tc.err},
				&stubAuthenticator{},
				&mocks.MockPasswordHasher{},
				&mocks.MockMailQueue{},
				testAuthHandlerConfig(),
				nil,
			)

			req := newJSONRequest(t, http.MethodPost, "/api/auth/reset-password", map[string]any{
				"token":    "some-token",
				"password": "N3wPassword",
			})
			rr := httptest.NewRecorder()
			handler.ResetPassword(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)

			var resp shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantBody, resp.Error)
		})
	}
}

func TestResetPasswordWeakPassword(t *testing.T) {
	t.Parallel()

	user := registeredUser(t)
	userStore := mocks.NewMockUserStore()
	userStore.AddUser(user)

	handler := NewAuthHandler(
		userStore,
		&mocks.MockJWTService{Claims: &auth.Claims{UserID: user.ID, TokenType: "reset"}},
		&stubAuthenticator{},
		&mocks.MockPasswordHasher{},
		&mocks.MockMailQueue{},
		testAuthHandlerConfig(),
		nil,
	)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/reset-password", map[string]any{
		"token":    "reset-token",
		"password": "weakpassword",
	})
	rr := httptest.NewRecorder()
	handler.ResetPassword(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "hashed:Sup3rSecret", user.HashedPassword, "credential unchanged")
}

func TestResetPasswordUnknownAccount(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	userStore.UpdateCredentialHashFn = func(ctx context.Context, id uuid.UUID, hashedPassword string) error {
		return store.ErrUserNotFound
	}

	handler := NewAuthHandler(
		userStore,
		&mocks.MockJWTService{Claims: &auth.Claims{TokenType: "reset"}},
		&stubAuthenticator{},
		&mocks.MockPasswordHasher{},
		&mocks.MockMailQueue{},
		testAuthHandlerConfig(),
		nil,
	)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/reset-password", map[string]any{
		"token":    "reset-token",
		"password": "N3wPassword",
	})
	rr := httptest.NewRecorder()
	handler.ResetPassword(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
