package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"studyzone_backend/internal/auth"
	"studyzone_backend/internal/config"
	"studyzone_backend/internal/email"
	"studyzone_backend/internal/handlers"
	"studyzone_backend/internal/logger"
	"studyzone_backend/internal/metrics"
	"studyzone_backend/internal/middleware"
	"studyzone_backend/internal/models"
	"studyzone_backend/internal/repositories"
	"studyzone_backend/internal/routes"
	"studyzone_backend/internal/services"
	"studyzone_backend/internal/validator"
	"studyzone_backend/internal/workers"
	"studyzone_backend/pkg/apperrors"
)

// App is a fully wired server.
type App struct {
	cfg      *config.Config
	Router   *gin.Engine
	Services *services.ServiceContainer
	repo     repositories.UserRepository
	limiter  *middleware.RateLimiter
	metrics  *metrics.Metrics
}

// Run loads configuration, connects storage and serves until SIGINT/SIGTERM.
func Run(configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, ping, closeDB, err := openUserRepository(cfg)
	if err != nil {
		logger.Fatal("Failed to open storage", "error", err)
	}
	defer closeDB()

	a, err := New(cfg, repo, ping)
	if err != nil {
		logger.Fatal("Failed to build application", "error", err)
	}

	if err := seedFirstAdmin(ctx, a.Services.Credentials, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	a.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

// New wires services, handlers and the router on top of repo.
func New(cfg *config.Config, repo repositories.UserRepository, ping handlers.Pinger) (*App, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	serviceContainer, err := initializeServices(cfg, repo, m)
	if err != nil {
		return nil, err
	}

	limiter := middleware.NewRateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst)
	a := &App{
		cfg:      cfg,
		Services: serviceContainer,
		repo:     repo,
		limiter:  limiter,
		metrics:  m,
	}
	a.Router, err = SetupRouter(cfg, serviceContainer, limiter, m, ping)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Start launches background work bound to ctx.
func (a *App) Start(ctx context.Context) {
	go a.limiter.Run(ctx)
	workers.NewResetTokenWorker(a.repo, a.cfg.Workers.ResetSweepInterval).Start(ctx)
}

func SetupRouter(
	cfg *config.Config,
	serviceContainer *services.ServiceContainer,
	limiter *middleware.RateLimiter,
	m *metrics.Metrics,
	ping handlers.Pinger,
) (*gin.Engine, error) {
	appHandlers := initializeHandlers(cfg, serviceContainer, ping)
	ginRouter, err := initializeGinRouter(cfg, m)
	if err != nil {
		return nil, err
	}

	guards := handlers.RouteGuards{
		Auth:      middleware.AuthMiddleware(serviceContainer.TokenService),
		RateLimit: limiter.Middleware(),
	}
	routes.RegisterRoutes(ginRouter, appHandlers, guards, m.Handler())
	return ginRouter, nil
}

func initializeServices(cfg *config.Config, repo repositories.UserRepository, m *metrics.Metrics) (*services.ServiceContainer, error) {
	manager, err := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		return nil, err
	}

	mailer, err := initializeMailer(cfg)
	if err != nil {
		return nil, err
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost, cfg.Auth.HashConcurrency)
	store := services.NewCredentialStore(repo, hasher)
	tokens := services.NewTokenService(manager, repo, store, cfg.Auth.ResetTokenTTL)

	return &services.ServiceContainer{
		AuthService:  services.NewAuthService(store, tokens, mailer, m),
		UserService:  services.NewUserService(store, repo),
		TokenService: tokens,
		Credentials:  store,
	}, nil
}

func initializeMailer(cfg *config.Config) (*email.Mailer, error) {
	templates := email.NewTemplateManager()
	if cfg.Email.TemplatesDir != "" {
		if err := templates.LoadTemplates(cfg.Email.TemplatesDir); err != nil {
			return nil, err
		}
	}

	var provider email.Provider
	if cfg.Email.SMTPHost != "" {
		provider = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
		logger.Info("Email provider: smtp", "host", cfg.Email.SMTPHost)
	} else {
		provider = email.LogProvider{}
		logger.Warn("SMTP host not configured, reset emails are only logged")
	}
	if err := provider.Validate(); err != nil {
		return nil, err
	}

	return email.NewMailer(provider, templates, cfg.Email.FromEmail, cfg.Auth.ResetURL), nil
}

func initializeHandlers(cfg *config.Config, serviceContainer *services.ServiceContainer, ping handlers.Pinger) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler:   handlers.NewAuthHandler(baseHandler, serviceContainer.AuthService, !cfg.IsProduction()),
		UserHandler:   handlers.NewUserHandler(baseHandler, serviceContainer.UserService),
		HealthHandler: handlers.NewHealthHandler(ping),
	}
}

func initializeGinRouter(cfg *config.Config, m *metrics.Metrics) (*gin.Engine, error) {
	router := gin.New()
	// ClientIP keys the rate limiter; only listed proxies may override it
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("server.trusted_proxies: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(m.Instrument())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	if cfg.Server.MaxBodyBytes > 0 {
		router.Use(middleware.MaxBodyBytes(cfg.Server.MaxBodyBytes))
	}
	return router, nil
}

// seedFirstAdmin makes sure the configured admin account exists and holds the admin role.
func seedFirstAdmin(ctx context.Context, store *services.CredentialStore, cfg *config.Config) error {
	adminEmail := cfg.Auth.FirstAdminEmail
	adminPassword := cfg.Auth.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}
	if err := auth.ValidatePassword(adminPassword); err != nil {
		return err
	}

	existing, err := store.FindByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		if models.HasAnyRole(existing.RoleSet(), models.RoleAdmin) {
			logger.Info("Admin user already exists. Skipping creation.", "email", existing.Email)
			return nil
		}
		_, err = store.GrantRole(ctx, existing.ID, models.RoleAdmin)
		if err == nil {
			logger.Warn("Existing user promoted to admin", "email", existing.Email)
		}
		return err
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return err
	}

	_, err = store.CreateUser(ctx, "admin", adminEmail, adminPassword, models.RoleAdmin)
	if errors.Is(err, apperrors.ErrDuplicateEmail) {
		// another instance seeded it first
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("Created first admin user", "email", adminEmail)
	return nil
}

// openUserRepository connects to postgres when a DSN is configured. Without one
// (development only; Validate forbids it in production) users live in memory.
func openUserRepository(cfg *config.Config) (repositories.UserRepository, handlers.Pinger, func(), error) {
	if cfg.Database.DSN == "" {
		logger.Warn("DATABASE_URL not set, using in-memory user store")
		return repositories.NewMemoryUserRepository(), nil, func() {}, nil
	}

	gormDB, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, nil, err
	}

	closeDB := func() {
		if err := sqlDB.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}
	return repositories.NewUserRepository(gormDB), sqlDB.PingContext, closeDB, nil
}
