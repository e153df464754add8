package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"smart-bin.backend/internal/config"
	"smart-bin.backend/internal/domain/entities"
	localauth "smart-bin.backend/internal/infrastructure/auth"
	infrarepos "smart-bin.backend/internal/infrastructure/repositories"
	"smart-bin.backend/internal/interfaces/http/middleware"
	"smart-bin.backend/internal/notification"
	"smart-bin.backend/internal/usecases"
	"smart-bin.backend/pkg/jwt"
	"smart-bin.backend/pkg/logger"
	redispkg "smart-bin.backend/pkg/redis"
)

type sentMessage struct {
	Channel     notification.Channel
	Destination string
	Payload     string
}

// recordingDispatcher captures outbound deliveries so tests can read the
// tokens and codes that would have gone out by email or SMS.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (d *recordingDispatcher) Send(_ context.Context, channel notification.Channel, destination, payload string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentMessage{Channel: channel, Destination: destination, Payload: payload})
	return uuid.New().String(), nil
}

func (d *recordingDispatcher) last(t *testing.T) sentMessage {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.sent, "no dispatched messages")
	return d.sent[len(d.sent)-1]
}

type handlerEnv struct {
	db         *gorm.DB
	dispatcher *recordingDispatcher

	userRepo *infrarepos.UserRepository
	creds    *localauth.LocalProvider

	registry     *usecases.RegistryUsecase
	verification *usecases.VerificationUsecase
	registration *usecases.RegistrationUsecase
	ledger       *usecases.LedgerUsecase
	auth         *usecases.AuthUsecase

	registryHandler     *RegistryHandler
	authHandler         *AuthHandler
	registrationHandler *RegistrationHandler
	verificationHandler *VerificationHandler
	userHandler         *UserHandler
	ledgerHandler       *LedgerHandler
	adminHandler        *AdminHandler
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Init("test")

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	createSchema(t, db)

	mr, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable: %v", err)
	}
	t.Cleanup(mr.Close)
	redispkg.SetClient(redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()}))

	cfg := config.VerificationConfig{
		EmailTokenTTL:  24 * time.Hour,
		OTPTTL:         5 * time.Minute,
		ResendCooldown: 30 * time.Second,
	}

	userRepo := infrarepos.NewUserRepository(db)
	registryRepo := infrarepos.NewTokenRegistryRepository(db)
	unclaimedRepo := infrarepos.NewUnclaimedTokenRepository(db)
	ledgerRepo := infrarepos.NewLedgerRepository(db)
	emailVerifRepo := infrarepos.NewEmailVerificationRepository(db)
	pendingRepo := infrarepos.NewPendingRegistrationRepository(db)
	uow := infrarepos.NewUnitOfWork(db)
	creds := localauth.NewLocalProvider(db)
	dispatcher := &recordingDispatcher{}

	sessionStore, err := redispkg.NewSessionStore("0000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)

	jwtService := jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)

	registry := usecases.NewRegistryUsecase(uow, registryRepo, unclaimedRepo)
	verification := usecases.NewVerificationUsecase(uow, userRepo, emailVerifRepo, creds, dispatcher, cfg)
	registration := usecases.NewRegistrationUsecase(uow, userRepo, pendingRepo, unclaimedRepo, registry, verification, creds, dispatcher, cfg.EmailTokenTTL)
	ledger := usecases.NewLedgerUsecase(uow, userRepo, ledgerRepo, registryRepo)
	authUsecase := usecases.NewAuthUsecase(userRepo, creds, verification, jwtService, sessionStore, 24*time.Hour)

	return &handlerEnv{
		db:                  db,
		dispatcher:          dispatcher,
		userRepo:            userRepo,
		creds:               creds,
		registry:            registry,
		verification:        verification,
		registration:        registration,
		ledger:              ledger,
		auth:                authUsecase,
		registryHandler:     NewRegistryHandler(registry),
		authHandler:         NewAuthHandler(authUsecase, registration, verification),
		registrationHandler: NewRegistrationHandler(registration),
		verificationHandler: NewVerificationHandler(verification),
		userHandler:         NewUserHandler(authUsecase, ledger),
		ledgerHandler:       NewLedgerHandler(ledger, authUsecase),
		adminHandler:        NewAdminHandler(authUsecase, ledger, registry),
	}
}

func createSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, q := range []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			phone TEXT,
			token TEXT,
			points INTEGER NOT NULL DEFAULT 0,
			verified BOOLEAN NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'unverified',
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			is_vendor BOOLEAN NOT NULL DEFAULT 0,
			joined_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE token_bindings (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at DATETIME
		);`,
		`CREATE TABLE unclaimed_tokens (
			token TEXT PRIMARY KEY,
			scanned_at DATETIME NOT NULL
		);`,
		`CREATE TABLE ledger_entries (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			vendor_id TEXT,
			points INTEGER NOT NULL,
			source TEXT,
			type TEXT NOT NULL,
			created_at DATETIME
		);`,
		`CREATE TABLE email_verifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			verified_at DATETIME,
			created_at DATETIME
		);`,
		`CREATE TABLE pending_registrations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			token TEXT NOT NULL,
			verify_token TEXT NOT NULL,
			verify_expires DATETIME NOT NULL,
			created_at DATETIME
		);`,
		`CREATE TABLE credentials (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE password_resets (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			token TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			consumed_at DATETIME,
			created_at DATETIME
		);`,
	} {
		require.NoError(t, db.Exec(q).Error)
	}
}

// asUser mimics an authenticated request by injecting the caller's identity
// the way the auth middleware would.
func asUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

// registerAccount runs the full registration saga for a fresh scanned token
func (env *handlerEnv) registerAccount(t *testing.T, email, phone, token string) *entities.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, env.registry.RecordScan(ctx, token))
	user, err := env.registration.Register(ctx, &entities.RegisterInput{
		Email:    email,
		Name:     "Handler Test User",
		Password: "hunter22",
		Phone:    phone,
		Token:    token,
	})
	require.NoError(t, err)
	return user
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewBuffer(raw)
	} else {
		rd = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
