// Package main provides the main entry point for the Saathi listener platform
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/saathi-care/listener-platform/app/handlers"
	"github.com/saathi-care/listener-platform/app/middleware"
	"github.com/saathi-care/listener-platform/app/router"
	"github.com/saathi-care/listener-platform/app/scheduler"
	"github.com/saathi-care/listener-platform/app/services"
	businessflow "github.com/saathi-care/listener-platform/business_flow"
	"github.com/saathi-care/listener-platform/config"
	_ "github.com/saathi-care/listener-platform/docs"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/repository"
	"github.com/saathi-care/listener-platform/utils"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Saathi listener platform...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeNotificationService initializes the notification service
func initializeNotificationService(cfg *config.ProductionConfig) services.NotificationService {
	var smsService services.SMSService

	switch cfg.SMS.ProviderDomain {
	case "mock":
		smsService = services.NewMockSMSService()
	default:
		smsService = services.NewSMSService(&cfg.SMS)
	}

	return services.NewNotificationService(smsService)
}

// initializeIdentityService initializes the identity provider client
func initializeIdentityService(cfg *config.ProductionConfig) services.IdentityService {
	if cfg.Identity.UseMock {
		return services.NewMockIdentityService()
	}
	return services.NewIdentityService(&cfg.Identity)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Seed the initial admin account when configured
	if err := ensureBootstrapAdmin(db, cfg); err != nil {
		return nil, err
	}

	// Initialize repositories
	applicationRepo := repository.NewApplicationRepository(db)
	listenerRepo := repository.NewListenerRepository(db)
	earningRepo := repository.NewEarningRepository(db)
	callRepo := repository.NewCallSessionRepository(db)
	messageRepo := repository.NewChatMessageRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	txManager := repository.NewTxManager(db)

	// Initialize services
	notificationService := initializeNotificationService(cfg)
	identityService := initializeIdentityService(cfg)

	captchaSvc, err := services.NewCaptchaServiceRotate(2*time.Minute, 15, 300)
	if err != nil {
		return nil, err
	}

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize flows
	applicationFlow := businessflow.NewApplicationFlow(
		applicationRepo,
		listenerRepo,
		auditRepo,
		captchaSvc,
	)

	provisioningFlow := businessflow.NewProvisioningFlow(
		applicationRepo,
		listenerRepo,
		auditRepo,
		identityService,
		notificationService,
		txManager,
	)

	onboardingFlow := businessflow.NewOnboardingFlow(
		listenerRepo,
		auditRepo,
		txManager,
		cfg.Onboarding,
	)

	listenerFlow := businessflow.NewListenerFlow(
		listenerRepo,
		auditRepo,
		identityService,
		rc,
		cfg.Cache,
	)

	earningFlow := businessflow.NewEarningFlow(
		callRepo,
		messageRepo,
		earningRepo,
		listenerRepo,
		auditRepo,
		businessflow.NewPricingPolicy(cfg.Pricing),
		txManager,
	)

	reportFlow := businessflow.NewAdminReportFlow(
		applicationRepo,
		listenerRepo,
		earningRepo,
	)

	adminAuthFlow := businessflow.NewAdminAuthFlow(
		adminRepo,
		auditRepo,
		tokenService,
		captchaSvc,
	)

	// Initialize handlers
	applicationHandler := handlers.NewApplicationHandler(applicationFlow, captchaSvc)
	listenerHandler := handlers.NewListenerHandler(listenerFlow, onboardingFlow, earningFlow)
	adminHandler := handlers.NewAdminHandler(adminAuthFlow, provisioningFlow, listenerFlow, reportFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		applicationHandler,
		listenerHandler,
		adminHandler,
		authMiddleware,
		cfg.Metrics.Enabled,
		cfg.Metrics.Path,
	)

	// Start background workers
	settler := scheduler.NewEarningsSettler(callRepo, messageRepo, earningFlow, cfg.Settlement, cfg.Logging)
	stopFuncs = append(stopFuncs, settler.Start(context.Background()))

	watcher := scheduler.NewOnboardingWatcher(onboardingFlow, cfg.Onboarding)
	stopFuncs = append(stopFuncs, watcher.Start(context.Background()))

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureBootstrapAdmin creates the first admin account from configuration so a
// fresh deployment has a usable login. Existing accounts are left untouched.
func ensureBootstrapAdmin(db *gorm.DB, cfg *config.ProductionConfig) error {
	if cfg.Admin.BootstrapUsername == "" || cfg.Admin.BootstrapPassword == "" {
		return nil
	}

	adminRepo := repository.NewAdminRepository(db)

	existing, err := adminRepo.ByUsername(context.Background(), cfg.Admin.BootstrapUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.BootstrapPassword), cfg.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}

	admin := models.Admin{
		UUID:         uuid.New(),
		Username:     cfg.Admin.BootstrapUsername,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := adminRepo.Save(context.Background(), &admin); err != nil {
		return err
	}

	log.Printf("Bootstrap admin account %q created", cfg.Admin.BootstrapUsername)
	return nil
}
