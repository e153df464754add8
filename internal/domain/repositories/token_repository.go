package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"smart-bin.backend/internal/domain/entities"
)

// TokenRegistryRepository maps normalized RFID tokens to user ids.
// Bindings are permanent: tokens are not recycled.
type TokenRegistryRepository interface {
	// Bind writes the token→user binding. Returns ErrConflict if the token
	// is already bound, decided by the primary key inside the surrounding
	// transaction.
	Bind(ctx context.Context, token string, userID uuid.UUID) error
	GetBinding(ctx context.Context, token string) (uuid.UUID, error)
}

// UnclaimedTokenRepository is the pool of tokens scanned by bin hardware
// but not yet claimed. At most one live entry per token value.
type UnclaimedTokenRepository interface {
	// Upsert records a scan, overwriting any prior entry for the token.
	Upsert(ctx context.Context, token string, scannedAt time.Time) error
	Exists(ctx context.Context, token string) (bool, error)
	// Delete removes the token from the pool. Returns ErrNotFound when no
	// live entry existed, which claim treats as a lost race.
	Delete(ctx context.Context, token string) error
	List(ctx context.Context) ([]*entities.UnclaimedToken, error)
}
