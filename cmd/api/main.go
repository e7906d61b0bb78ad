package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/meridianx/backoffice/internal/auth"
	"github.com/meridianx/backoffice/internal/background"
	"github.com/meridianx/backoffice/internal/captcha"
	"github.com/meridianx/backoffice/internal/config"
	"github.com/meridianx/backoffice/internal/database"
	"github.com/meridianx/backoffice/internal/geoip"
	"github.com/meridianx/backoffice/internal/handlers"
	"github.com/meridianx/backoffice/internal/middleware"
	"github.com/meridianx/backoffice/internal/models"
	"github.com/meridianx/backoffice/internal/repositories"
	"github.com/meridianx/backoffice/internal/routes"
	"github.com/meridianx/backoffice/internal/services"
	pkgauth "github.com/meridianx/backoffice/pkg/auth"
	pkghttp "github.com/meridianx/backoffice/pkg/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Run migrations before opening the pool
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := database.Migrate(migrateCtx, cfg.Database.DSN()); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	adminRepo := repositories.NewAdminRepository(db)
	refreshRepo := repositories.NewRefreshTokenRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(refreshRepo, logger, cfg.Auth.CleanupInterval)

	// Initialize token and TOTP managers
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)
	totpManager := auth.NewTOTPManager(cfg.Auth.TOTPIssuer)

	// Per-IP attempt tracking: Redis when configured, in-process otherwise
	var tracker services.AttemptTracker
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		tracker = services.NewRedisAttemptTracker(client, cfg.Auth.CaptchaThreshold, cfg.Auth.CaptchaWindow, logger)
		logger.Info("using redis attempt tracker", slog.String("addr", cfg.Redis.Addr))
	} else {
		tracker = services.NewMemoryAttemptTracker(cfg.Auth.CaptchaThreshold, cfg.Auth.CaptchaWindow)
		logger.Info("using in-memory attempt tracker")
	}

	captchaVerifier := captcha.NewRecaptchaVerifier(&cfg.Captcha, logger)
	if !cfg.Captcha.Enabled() {
		logger.Warn("no RECAPTCHA_SECRET_KEY set, captcha verification will reject gated logins")
	}

	// GeoIP enrichment for audit entries
	var geoResolver geoip.Resolver = geoip.NoopResolver{}
	if cfg.GeoIP.DatabasePath != "" {
		maxmind, err := geoip.NewMaxMindResolver(cfg.GeoIP.DatabasePath, logger)
		if err != nil {
			logger.Error("failed to open geoip database", slog.Any("error", err))
			os.Exit(1)
		}
		defer maxmind.Close()
		geoResolver = maxmind
	}

	// Lockout notifications via SES
	var notifier services.SecurityNotifier = services.NoopSecurityNotifier{}
	if cfg.Email.Enabled() {
		sesNotifier, err := services.NewSESSecurityNotifier(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.OpsAddress, logger)
		if err != nil {
			logger.Error("failed to initialize security notifier", slog.Any("error", err))
			os.Exit(1)
		}
		notifier = sesNotifier
	}

	// Initialize services
	auditService := services.NewAuditService(auditRepo, logger)
	authService := services.NewAuthService(
		adminRepo, refreshRepo,
		tokenManager, totpManager,
		tracker, captchaVerifier, geoResolver,
		auditService, notifier,
		cfg.Auth, logger,
	)
	twoFactorService := services.NewTwoFactorService(adminRepo, totpManager, logger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	twoFactorHandler := handlers.NewTwoFactorHandler(twoFactorService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Bootstrap first super admin if configured
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(bootstrapCtx, adminRepo, cfg.Admin, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	bootstrapCancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, twoFactorHandler, auditHandler, tokenManager, adminRepo)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminUser creates the first super admin when the admins table is
// empty and ADMIN_EMAIL and ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, adminRepo *repositories.AdminRepository, cfg config.AdminBootstrapConfig, logger *slog.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin bootstrap")
		return nil
	}

	count, err := adminRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		logger.Info("admin accounts already exist, skipping bootstrap")
		return nil
	}

	if result := pkgauth.ValidateStrength(cfg.Password); !result.IsValid {
		return errors.New("ADMIN_PASSWORD does not meet the password policy")
	}

	hashedPassword, err := pkgauth.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.Admin{
		Email:        cfg.Email,
		PasswordHash: hashedPassword,
		Name:         "Administrator",
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	}

	if _, err := adminRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("super admin account created", slog.String("email", cfg.Email))
	return nil
}
