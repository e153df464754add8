package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope. All
	// repository calls made with the inner context observe a consistent
	// snapshot and commit or roll back as one group.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
