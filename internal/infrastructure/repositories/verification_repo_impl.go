package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"smart-bin.backend/internal/domain/entities"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/infrastructure/models"
)

// EmailVerificationRepository implements email link token storage
type EmailVerificationRepository struct {
	db *gorm.DB
}

// NewEmailVerificationRepository creates a new email verification repository
func NewEmailVerificationRepository(db *gorm.DB) *EmailVerificationRepository {
	return &EmailVerificationRepository{db: db}
}

// Issue stores a new token, removing any unconsumed prior token for the
// account in the same write so at most one live token exists.
func (r *EmailVerificationRepository) Issue(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	db := GetDB(ctx, r.db).WithContext(ctx)
	if err := db.Where("user_id = ? AND verified_at IS NULL", userID).Delete(&models.EmailVerification{}).Error; err != nil {
		return err
	}
	m := &models.EmailVerification{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return db.Create(m).Error
}

// Consume marks the token verified and returns its owner. The conditional
// update is the single-use guard: whichever request flips verified_at wins.
func (r *EmailVerificationRepository) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var m models.EmailVerification
	if err := db.Where("token = ?", token).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, domainerrors.ErrInvalidOrExpiredCode
		}
		return uuid.Nil, err
	}
	if m.VerifiedAt != nil || time.Now().After(m.ExpiresAt) {
		return uuid.Nil, domainerrors.ErrInvalidOrExpiredCode
	}

	result := db.Model(&models.EmailVerification{}).
		Where("id = ? AND verified_at IS NULL", m.ID).
		Update("verified_at", time.Now())
	if result.Error != nil {
		return uuid.Nil, result.Error
	}
	if result.RowsAffected == 0 {
		return uuid.Nil, domainerrors.ErrInvalidOrExpiredCode
	}
	return m.UserID, nil
}

// LatestIssuedAt reports when the newest token for the account was issued
func (r *EmailVerificationRepository) LatestIssuedAt(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	var m models.EmailVerification
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, domainerrors.ErrNotFound
		}
		return time.Time{}, err
	}
	return m.CreatedAt, nil
}

// PendingRegistrationRepository implements deferred registration storage
type PendingRegistrationRepository struct {
	db *gorm.DB
}

// NewPendingRegistrationRepository creates a new pending registration repository
func NewPendingRegistrationRepository(db *gorm.DB) *PendingRegistrationRepository {
	return &PendingRegistrationRepository{db: db}
}

// Create stores a pending registration
func (r *PendingRegistrationRepository) Create(ctx context.Context, pending *entities.PendingRegistration) error {
	m := &models.PendingRegistration{
		ID:            pending.ID,
		Name:          pending.Name,
		Email:         pending.Email,
		Phone:         pending.Phone.Ptr(),
		Token:         pending.Token,
		VerifyToken:   pending.VerifyToken,
		VerifyExpires: pending.VerifyExpires,
		CreatedAt:     pending.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByID returns a pending registration
func (r *PendingRegistrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.PendingRegistration, error) {
	var m models.PendingRegistration
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.PendingRegistration{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		Phone:         null.StringFromPtr(m.Phone),
		Token:         m.Token,
		VerifyToken:   m.VerifyToken,
		VerifyExpires: m.VerifyExpires,
		CreatedAt:     m.CreatedAt,
	}, nil
}

// Reissue swaps the verification token in one write, invalidating the old one
func (r *PendingRegistrationRepository) Reissue(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.PendingRegistration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verify_token":   token,
			"verify_expires": expiresAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete removes a pending registration
func (r *PendingRegistrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Delete(&models.PendingRegistration{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
