package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"smart-bin.backend/internal/domain/entities"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/infrastructure/models"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	m := userToModel(user)
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return userToEntity(&m), nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return userToEntity(&m), nil
}

// GetByPhone gets a user by normalized phone number
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("phone = ?", phone).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return userToEntity(&m), nil
}

// UpdateProfile updates mutable identity fields. Verification flags are
// included because an email or phone change resets them in the same write.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *entities.User) error {
	updates := map[string]interface{}{
		"name":       user.Name,
		"email":      user.Email,
		"phone":      user.Phone.Ptr(),
		"token":      user.Token,
		"verified":   user.Verified,
		"status":     string(user.Status),
		"updated_at": time.Now(),
	}

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SetVerification flips the verified flag and lifecycle status
func (r *UserRepository) SetVerification(ctx context.Context, id uuid.UUID, verified bool, status entities.UserStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"verified":   verified,
		"status":     string(status),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// GrantRole sets a role flag to true. Idempotent: re-granting is a no-op
// that still succeeds.
func (r *UserRepository) GrantRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error {
	var column string
	switch role {
	case entities.UserRoleAdmin:
		column = "is_admin"
	case entities.UserRoleVendor:
		column = "is_vendor"
	default:
		return domainerrors.ErrInvalidInput
	}

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		column:       true,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists users with optional search filter
func (r *UserRepository) List(ctx context.Context, search string) ([]*entities.User, error) {
	var userModels []models.User
	query := GetDB(ctx, r.db).WithContext(ctx).Order("created_at DESC")

	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", searchTerm, searchTerm)
	}

	if err := query.Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]*entities.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, userToEntity(&userModels[i]))
	}
	return users, nil
}

// Credit increments the cached balance
func (r *UserRepository) Credit(ctx context.Context, id uuid.UUID, points int64) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"points":     gorm.Expr("points + ?", points),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Debit decrements the cached balance with an in-database guard. The
// points >= ? predicate is evaluated against the committed row inside the
// transaction, so two racing debits can never jointly overdraw.
func (r *UserRepository) Debit(ctx context.Context, id uuid.UUID, points int64) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND points >= ?", id, points).
		Updates(map[string]interface{}{
			"points":     gorm.Expr("points - ?", points),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing user from an uncovered balance.
		var count int64
		if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrNotFound
		}
		return domainerrors.ErrInsufficientBalance
	}
	return nil
}

func userToModel(u *entities.User) *models.User {
	return &models.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone.Ptr(),
		Token:     u.Token,
		Points:    u.Points,
		Verified:  u.Verified,
		Status:    string(u.Status),
		IsAdmin:   u.IsAdmin,
		IsVendor:  u.IsVendor,
		JoinedAt:  u.JoinedAt,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userToEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Phone:     null.StringFromPtr(m.Phone),
		Token:     m.Token,
		Points:    m.Points,
		Verified:  m.Verified,
		Status:    entities.UserStatus(m.Status),
		IsAdmin:   m.IsAdmin,
		IsVendor:  m.IsVendor,
		JoinedAt:  m.JoinedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
