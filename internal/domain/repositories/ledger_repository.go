package repositories

import (
	"context"

	"github.com/google/uuid"
	"smart-bin.backend/internal/domain/entities"
)

// LedgerRepository stores immutable point movements
type LedgerRepository interface {
	Append(ctx context.Context, entry *entities.LedgerEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.LedgerEntry, error)
	ListAll(ctx context.Context) ([]*entities.LedgerEntry, error)
	// SumForUser recomputes the balance from the ledger. The stored
	// users.points value is a cache of this total and must never diverge.
	SumForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
