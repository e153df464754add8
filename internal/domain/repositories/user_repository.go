package repositories

import (
	"context"

	"github.com/google/uuid"
	"smart-bin.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByPhone(ctx context.Context, phone string) (*entities.User, error)
	UpdateProfile(ctx context.Context, user *entities.User) error
	SetVerification(ctx context.Context, id uuid.UUID, verified bool, status entities.UserStatus) error
	GrantRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error
	List(ctx context.Context, search string) ([]*entities.User, error)

	// Credit and Debit mutate the cached points balance. Debit is guarded:
	// it only applies when the stored balance covers the amount, and
	// returns ErrInsufficientBalance otherwise. Both must run inside the
	// same transaction as the ledger append.
	Credit(ctx context.Context, id uuid.UUID, points int64) error
	Debit(ctx context.Context, id uuid.UUID, points int64) error
}
