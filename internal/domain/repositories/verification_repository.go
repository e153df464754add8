package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"smart-bin.backend/internal/domain/entities"
)

// EmailVerificationRepository stores single-use email link tokens.
// At most one live token per account: Issue replaces any unconsumed token
// in the same write.
type EmailVerificationRepository interface {
	Issue(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	// Consume marks the token verified and returns the owning user.
	// Unknown, expired or already-consumed tokens all fail with
	// ErrInvalidOrExpiredCode.
	Consume(ctx context.Context, token string) (uuid.UUID, error)
	// LatestIssuedAt reports when the newest token for the account was
	// issued, so callers can enforce the resend cooldown.
	LatestIssuedAt(ctx context.Context, userID uuid.UUID) (time.Time, error)
}

// PendingRegistrationRepository stores deferred registrations
type PendingRegistrationRepository interface {
	Create(ctx context.Context, pending *entities.PendingRegistration) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PendingRegistration, error)
	// Reissue swaps the verification token, invalidating the previous one
	// as part of the same write.
	Reissue(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}
