package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskflow/taskflow-api/internal/api"
	apiMiddleware "github.com/taskflow/taskflow-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	secure := app.config.Server.Production()

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.loginService,
		app.passwordHasher,
		app.mailDispatcher,
		api.AuthHandlerConfig{
			TokenLifetime: time.Duration(app.config.Auth.TokenLifetimeMinutes) * time.Minute,
			SecureCookies: secure,
			FrontendURL:   app.config.Email.FrontendURL,
		},
		app.logger,
	)
	taskHandler := api.NewTaskHandler(app.taskStore, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.userStore, secure)

	r.Route("/api", func(r chi.Router) {
		// Guest-only endpoints: an already-authenticated browser gets
		// redirected back to the dashboard.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireGuest)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/forgot-password", authHandler.ForgotPassword)
			r.Post("/auth/reset-password", authHandler.ResetPassword)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/user", authHandler.CurrentUser)
			r.Get("/auth/verify", authHandler.Verify)

			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks", taskHandler.List)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Put("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
