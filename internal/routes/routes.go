package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/meridianx/backoffice/internal/auth"
	"github.com/meridianx/backoffice/internal/handlers"
	"github.com/meridianx/backoffice/internal/middleware"
	"github.com/meridianx/backoffice/internal/models"
	"github.com/meridianx/backoffice/internal/repositories"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	twoFactorHandler *handlers.TwoFactorHandler,
	auditHandler *handlers.AuditHandler,
	tokenManager *auth.TokenManager,
	adminRepo *repositories.AdminRepository,
) {
	// Rate limiting config for auth endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login/2fa", authHandler.CompleteTwoFactor)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/refresh", authHandler.Refresh)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Get("/auth/captcha-required", authHandler.CaptchaRequired)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/password-strength", authHandler.PasswordStrength)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(tokenManager))

		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/profile", authHandler.Profile)
		r.Get("/auth/verify", authHandler.Verify)
		r.Post("/auth/change-password", authHandler.ChangePassword)

		r.Post("/auth/2fa/setup", twoFactorHandler.Setup)
		r.Post("/auth/2fa/enable", twoFactorHandler.Enable)
		r.Post("/auth/2fa/disable", twoFactorHandler.Disable)
		r.Post("/auth/2fa/verify", twoFactorHandler.Verify)

		// Super-admin only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(adminRepo, models.RoleSuperAdmin))
			r.Get("/audit-logs", auditHandler.List)
		})
	})
}
