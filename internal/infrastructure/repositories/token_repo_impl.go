package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"smart-bin.backend/internal/domain/entities"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/infrastructure/models"
)

// TokenRegistryRepository implements the token→user registry
type TokenRegistryRepository struct {
	db *gorm.DB
}

// NewTokenRegistryRepository creates a new token registry repository
func NewTokenRegistryRepository(db *gorm.DB) *TokenRegistryRepository {
	return &TokenRegistryRepository{db: db}
}

// Bind writes the binding. The token primary key decides races: the loser
// of two concurrent claims hits a duplicate key and gets ErrConflict.
func (r *TokenRegistryRepository) Bind(ctx context.Context, token string, userID uuid.UUID) error {
	m := &models.TokenBinding{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "duplicate key") {
			return domainerrors.ErrConflict
		}
		return err
	}
	return nil
}

// GetBinding returns the user bound to the token
func (r *TokenRegistryRepository) GetBinding(ctx context.Context, token string) (uuid.UUID, error) {
	var m models.TokenBinding
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("token = ?", token).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, domainerrors.ErrNotFound
		}
		return uuid.Nil, err
	}
	return m.UserID, nil
}

// UnclaimedTokenRepository implements the unclaimed scan pool
type UnclaimedTokenRepository struct {
	db *gorm.DB
}

// NewUnclaimedTokenRepository creates a new unclaimed token repository
func NewUnclaimedTokenRepository(db *gorm.DB) *UnclaimedTokenRepository {
	return &UnclaimedTokenRepository{db: db}
}

// Upsert records a scan; latest scan wins for a repeated token. Tokens
// already present in the registry are refused, so a scan racing a claim
// can never put a just-bound token back in the pool.
func (r *UnclaimedTokenRepository) Upsert(ctx context.Context, token string, scannedAt time.Time) error {
	return GetDB(ctx, r.db).WithContext(ctx).Exec(
		`INSERT INTO unclaimed_tokens (token, scanned_at)
		 SELECT ?, ?
		 WHERE NOT EXISTS (SELECT 1 FROM token_bindings WHERE token = ?)
		 ON CONFLICT (token) DO UPDATE SET scanned_at = excluded.scanned_at`,
		token, scannedAt, token,
	).Error
}

// Exists reports whether the token is in the pool
func (r *UnclaimedTokenRepository) Exists(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.UnclaimedToken{}).Where("token = ?", token).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the pool entry. Zero rows affected means another claim
// consumed it first.
func (r *UnclaimedTokenRepository) Delete(ctx context.Context, token string) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Delete(&models.UnclaimedToken{}, "token = ?", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List returns the pool ordered by most recent scan
func (r *UnclaimedTokenRepository) List(ctx context.Context) ([]*entities.UnclaimedToken, error) {
	var rows []models.UnclaimedToken
	if err := GetDB(ctx, r.db).WithContext(ctx).Order("scanned_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.UnclaimedToken, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entities.UnclaimedToken{Token: row.Token, ScannedAt: row.ScannedAt})
	}
	return out, nil
}
