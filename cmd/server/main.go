package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"smart-bin.backend/internal/config"
	"smart-bin.backend/internal/infrastructure/auth"
	"smart-bin.backend/internal/infrastructure/repositories"
	"smart-bin.backend/internal/interfaces/http/handlers"
	"smart-bin.backend/internal/interfaces/http/middleware"
	"smart-bin.backend/internal/notification"
	"smart-bin.backend/internal/usecases"
	"smart-bin.backend/pkg/jwt"
	"smart-bin.backend/pkg/logger"
	"smart-bin.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	newSessionStore = redis.NewSessionStore
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("connected to PostgreSQL")
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	registryRepo := repositories.NewTokenRegistryRepository(db)
	unclaimedRepo := repositories.NewUnclaimedTokenRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)
	emailVerifRepo := repositories.NewEmailVerificationRepository(db)
	pendingRepo := repositories.NewPendingRegistrationRepository(db)
	uow := repositories.NewUnitOfWork(db)

	credProvider := auth.NewLocalProvider(db)
	dispatcher := notification.NewLogDispatcher()

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// Usecases
	registryUsecase := usecases.NewRegistryUsecase(uow, registryRepo, unclaimedRepo)
	verificationUsecase := usecases.NewVerificationUsecase(uow, userRepo, emailVerifRepo, credProvider, dispatcher, cfg.Verification)
	registrationUsecase := usecases.NewRegistrationUsecase(uow, userRepo, pendingRepo, unclaimedRepo, registryUsecase, verificationUsecase, credProvider, dispatcher, cfg.Verification.EmailTokenTTL)
	ledgerUsecase := usecases.NewLedgerUsecase(uow, userRepo, ledgerRepo, registryRepo)
	authUsecase := usecases.NewAuthUsecase(userRepo, credProvider, verificationUsecase, jwtService, sessionStore, cfg.JWT.RefreshExpiry)

	// Handlers
	authHandler := handlers.NewAuthHandler(authUsecase, registrationUsecase, verificationUsecase)
	registrationHandler := handlers.NewRegistrationHandler(registrationUsecase)
	verificationHandler := handlers.NewVerificationHandler(verificationUsecase)
	registryHandler := handlers.NewRegistryHandler(registryUsecase)
	userHandler := handlers.NewUserHandler(authUsecase, ledgerUsecase)
	ledgerHandler := handlers.NewLedgerHandler(ledgerUsecase, authUsecase)
	adminHandler := handlers.NewAdminHandler(authUsecase, ledgerUsecase, registryUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService)
	deviceMiddleware := middleware.DeviceAuthMiddleware(cfg.Device.Secret)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:         authHandler,
		registrationHandler: registrationHandler,
		verificationHandler: verificationHandler,
		registryHandler:     registryHandler,
		userHandler:         userHandler,
		ledgerHandler:       ledgerHandler,
		adminHandler:        adminHandler,
		authMiddleware:      authMiddleware,
		deviceMiddleware:    deviceMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down server...")
	}()

	log.Printf("Smart-Bin backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
