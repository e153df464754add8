package usecases

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"smart-bin.backend/internal/config"
	"smart-bin.backend/internal/domain/entities"
	"smart-bin.backend/internal/infrastructure/auth"
	infrarepos "smart-bin.backend/internal/infrastructure/repositories"
	"smart-bin.backend/internal/notification"
	"smart-bin.backend/pkg/jwt"
	"smart-bin.backend/pkg/logger"
	redispkg "smart-bin.backend/pkg/redis"
)

// sentMessage is one captured dispatcher delivery
type sentMessage struct {
	Channel     notification.Channel
	Destination string
	Payload     string
}

// recordingDispatcher captures deliveries so tests can read the tokens and
// codes that would have gone out by email or SMS.
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

type testEnv struct {
	db         *gorm.DB
	mr         *miniredis.Miniredis
	dispatcher *recordingDispatcher
	cfg        config.VerificationConfig

	userRepo      *infrarepos.UserRepository
	ledgerRepo    *infrarepos.LedgerRepository
	unclaimedRepo *infrarepos.UnclaimedTokenRepository
	registryRepo  *infrarepos.TokenRegistryRepository
	creds         *auth.LocalProvider

	registry     *RegistryUsecase
	verification *VerificationUsecase
	registration *RegistrationUsecase
	ledger       *LedgerUsecase
	auth         *AuthUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
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
	creds := auth.NewLocalProvider(db)
	dispatcher := &recordingDispatcher{}

	sessionStore, err := redispkg.NewSessionStore("0000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)

	jwtService := jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)

	registry := NewRegistryUsecase(uow, registryRepo, unclaimedRepo)
	verification := NewVerificationUsecase(uow, userRepo, emailVerifRepo, creds, dispatcher, cfg)
	registration := NewRegistrationUsecase(uow, userRepo, pendingRepo, unclaimedRepo, registry, verification, creds, dispatcher, cfg.EmailTokenTTL)
	ledger := NewLedgerUsecase(uow, userRepo, ledgerRepo, registryRepo)
	authUsecase := NewAuthUsecase(userRepo, creds, verification, jwtService, sessionStore, 24*time.Hour)

	return &testEnv{
		db:            db,
		mr:            mr,
		dispatcher:    dispatcher,
		cfg:           cfg,
		userRepo:      userRepo,
		ledgerRepo:    ledgerRepo,
		unclaimedRepo: unclaimedRepo,
		registryRepo:  registryRepo,
		creds:         creds,
		registry:      registry,
		verification:  verification,
		registration:  registration,
		ledger:        ledger,
		auth:          authUsecase,
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

// seedAccount inserts a user row directly, bypassing the registration saga
func (env *testEnv) seedAccount(t *testing.T, email, phone string, points int64) *entities.User {
	t.Helper()
	now := time.Now()
	user := &entities.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      "Seeded User",
		Points:    points,
		Status:    entities.UserStatusUnverified,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if phone != "" {
		user.Phone = null.StringFrom(phone)
	}
	require.NoError(t, env.userRepo.Create(context.Background(), user))
	return user
}
