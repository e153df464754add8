package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	domainerrors "smart-bin.backend/internal/domain/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")

	require.NoError(t, db.Exec(`CREATE TABLE credentials (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE password_resets (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		token TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		consumed_at DATETIME,
		created_at DATETIME
	);`).Error)
	return db
}

func TestLocalProvider_CreateAndVerify(t *testing.T) {
	p := NewLocalProvider(newTestDB(t))
	ctx := context.Background()

	userID, err := p.CreateCredential(ctx, "alice@example.com", "s3cret-pw")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, userID)

	got, err := p.VerifyCredential(ctx, "alice@example.com", "s3cret-pw")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = p.VerifyCredential(ctx, "alice@example.com", "wrong-pw")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = p.VerifyCredential(ctx, "nobody@example.com", "s3cret-pw")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestLocalProvider_DuplicateEmail(t *testing.T) {
	p := NewLocalProvider(newTestDB(t))
	ctx := context.Background()

	_, err := p.CreateCredential(ctx, "dup@example.com", "password-one")
	require.NoError(t, err)

	_, err = p.CreateCredential(ctx, "dup@example.com", "password-two")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestLocalProvider_DeleteCredential(t *testing.T) {
	p := NewLocalProvider(newTestDB(t))
	ctx := context.Background()

	userID, err := p.CreateCredential(ctx, "gone@example.com", "s3cret-pw")
	require.NoError(t, err)

	require.NoError(t, p.DeleteCredential(ctx, userID))

	_, err = p.VerifyCredential(ctx, "gone@example.com", "s3cret-pw")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	assert.ErrorIs(t, p.DeleteCredential(ctx, userID), domainerrors.ErrNotFound)
}

func TestLocalProvider_UpdatePassword(t *testing.T) {
	p := NewLocalProvider(newTestDB(t))
	ctx := context.Background()

	userID, err := p.CreateCredential(ctx, "rotate@example.com", "old-password")
	require.NoError(t, err)

	require.NoError(t, p.UpdatePassword(ctx, userID, "new-password"))

	_, err = p.VerifyCredential(ctx, "rotate@example.com", "old-password")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	got, err := p.VerifyCredential(ctx, "rotate@example.com", "new-password")
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestLocalProvider_UpdateEmail(t *testing.T) {
	p := NewLocalProvider(newTestDB(t))
	ctx := context.Background()

	userID, err := p.CreateCredential(ctx, "before@example.com", "s3cret-pw")
	require.NoError(t, err)
	_, err = p.CreateCredential(ctx, "taken@example.com", "s3cret-pw")
	require.NoError(t, err)

	assert.ErrorIs(t, p.UpdateEmail(ctx, userID, "taken@example.com"), domainerrors.ErrAlreadyExists)

	require.NoError(t, p.UpdateEmail(ctx, userID, "after@example.com"))

	got, err := p.VerifyCredential(ctx, "after@example.com", "s3cret-pw")
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestLocalProvider_PasswordReset(t *testing.T) {
	p := NewLocalProvider(newTestDB(t))
	ctx := context.Background()

	userID, err := p.CreateCredential(ctx, "reset@example.com", "old-password")
	require.NoError(t, err)

	token, err := p.IssueResetToken(ctx, "reset@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, p.ConsumeResetToken(ctx, token, "new-password"))

	got, err := p.VerifyCredential(ctx, "reset@example.com", "new-password")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	// Single use
	err = p.ConsumeResetToken(ctx, token, "another-password")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidOrExpiredCode)
}

func TestLocalProvider_PasswordReset_UnknownEmail(t *testing.T) {
	p := NewLocalProvider(newTestDB(t))

	_, err := p.IssueResetToken(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestLocalProvider_PasswordReset_BadToken(t *testing.T) {
	p := NewLocalProvider(newTestDB(t))

	err := p.ConsumeResetToken(context.Background(), "never-issued", "x-password")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidOrExpiredCode)
}
