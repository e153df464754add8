package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/infrastructure/models"
	"smart-bin.backend/pkg/crypto"
)

const resetTokenTTL = time.Hour

// LocalProvider is a database-backed credential provider. Production
// deployments can swap in a hosted identity provider behind the same
// interface; the core only ever sees user ids and tokens.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local credential provider
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{db: db}
}

// CreateCredential hashes the password and allocates the canonical user id
func (p *LocalProvider) CreateCredential(ctx context.Context, email, password string) (uuid.UUID, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return uuid.Nil, err
	}

	m := &models.Credential{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := p.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "duplicate key") {
			return uuid.Nil, domainerrors.NewError("email already in use", domainerrors.ErrAlreadyExists)
		}
		return uuid.Nil, err
	}
	return m.ID, nil
}

// DeleteCredential removes a credential
func (p *LocalProvider) DeleteCredential(ctx context.Context, userID uuid.UUID) error {
	result := p.db.WithContext(ctx).Delete(&models.Credential{}, "id = ?", userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// VerifyCredential checks an email+password pair
func (p *LocalProvider) VerifyCredential(ctx context.Context, email, password string) (uuid.UUID, error) {
	var m models.Credential
	if err := p.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, domainerrors.ErrInvalidCredentials
		}
		return uuid.Nil, err
	}
	if !crypto.CheckPassword(password, m.PasswordHash) {
		return uuid.Nil, domainerrors.ErrInvalidCredentials
	}
	return m.ID, nil
}

// UpdatePassword replaces the stored hash
func (p *LocalProvider) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	result := p.db.WithContext(ctx).Model(&models.Credential{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password_hash": hash,
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateEmail re-keys the credential to a new address
func (p *LocalProvider) UpdateEmail(ctx context.Context, userID uuid.UUID, newEmail string) error {
	result := p.db.WithContext(ctx).Model(&models.Credential{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"email":      newEmail,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) || strings.Contains(result.Error.Error(), "UNIQUE constraint") || strings.Contains(result.Error.Error(), "duplicate key") {
			return domainerrors.NewError("email already in use", domainerrors.ErrAlreadyExists)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// IssueResetToken produces a password reset token for the email. Issuing for
// an unknown email fails NotFound; callers decide whether to mask that.
func (p *LocalProvider) IssueResetToken(ctx context.Context, email string) (string, error) {
	var m models.Credential
	if err := p.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domainerrors.ErrNotFound
		}
		return "", err
	}

	token, err := crypto.GenerateVerificationToken()
	if err != nil {
		return "", err
	}
	reset := &models.PasswordReset{
		ID:        uuid.New(),
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := p.db.WithContext(ctx).Create(reset).Error; err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeResetToken applies a password change for a valid, unconsumed token
func (p *LocalProvider) ConsumeResetToken(ctx context.Context, token, newPassword string) error {
	var m models.PasswordReset
	if err := p.db.WithContext(ctx).Where("token = ?", token).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrInvalidOrExpiredCode
		}
		return err
	}
	if m.ConsumedAt != nil || time.Now().After(m.ExpiresAt) {
		return domainerrors.ErrInvalidOrExpiredCode
	}

	// Single-use guard: only the request that flips consumed_at proceeds.
	result := p.db.WithContext(ctx).Model(&models.PasswordReset{}).
		Where("id = ? AND consumed_at IS NULL", m.ID).
		Update("consumed_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidOrExpiredCode
	}

	var cred models.Credential
	if err := p.db.WithContext(ctx).Where("email = ?", m.Email).First(&cred).Error; err != nil {
		return err
	}
	return p.UpdatePassword(ctx, cred.ID, newPassword)
}
