package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"smart-bin.backend/internal/domain/entities"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/domain/repositories"
)

// RegistryUsecase handles the RFID token registry and unclaimed pool
type RegistryUsecase struct {
	uow           repositories.UnitOfWork
	registryRepo  repositories.TokenRegistryRepository
	unclaimedRepo repositories.UnclaimedTokenRepository
}

// NewRegistryUsecase creates a new registry usecase
func NewRegistryUsecase(
	uow repositories.UnitOfWork,
	registryRepo repositories.TokenRegistryRepository,
	unclaimedRepo repositories.UnclaimedTokenRepository,
) *RegistryUsecase {
	return &RegistryUsecase{
		uow:           uow,
		registryRepo:  registryRepo,
		unclaimedRepo: unclaimedRepo,
	}
}

// RecordScan records a hardware scan. Scans of already-bound tokens are
// accepted but have no registry effect; otherwise the pool entry is
// upserted, latest scan wins.
func (u *RegistryUsecase) RecordScan(ctx context.Context, token string) error {
	normalized, err := entities.NormalizeToken(token)
	if err != nil {
		return err
	}

	_, err = u.registryRepo.GetBinding(ctx, normalized)
	if err == nil {
		// Already bound: informational scan only.
		return nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}

	return u.unclaimedRepo.Upsert(ctx, normalized, time.Now())
}

// CheckAvailability returns the three-way availability answer
func (u *RegistryUsecase) CheckAvailability(ctx context.Context, token string) (entities.TokenAvailability, error) {
	normalized, err := entities.NormalizeToken(token)
	if err != nil {
		return "", err
	}

	_, err = u.registryRepo.GetBinding(ctx, normalized)
	if err == nil {
		return entities.TokenRegistered, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return "", err
	}

	exists, err := u.unclaimedRepo.Exists(ctx, normalized)
	if err != nil {
		return "", err
	}
	if exists {
		return entities.TokenAvailable, nil
	}
	return entities.TokenUnknown, nil
}

// Claim atomically binds an available token to a user and removes it from
// the unclaimed pool. Exactly one of two racing claims wins; the loser
// gets ErrConflict. The token must be normalized and the caller must run
// this inside its own transaction when the claim is part of a larger write.
func (u *RegistryUsecase) Claim(ctx context.Context, token string, userID uuid.UUID) error {
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.claimInTx(txCtx, token, userID)
	})
}

// claimInTx is the transactional body of Claim, shared with the
// registration saga which wraps it in a wider transaction.
func (u *RegistryUsecase) claimInTx(ctx context.Context, token string, userID uuid.UUID) error {
	if err := u.registryRepo.Bind(ctx, token, userID); err != nil {
		return err
	}
	if err := u.unclaimedRepo.Delete(ctx, token); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			// Never scanned, or another claim consumed the pool entry
			// after our bind began. Abort the whole transaction.
			return domainerrors.ErrConflict
		}
		return err
	}
	return nil
}

// ListUnclaimed returns the unclaimed pool for the admin screen
func (u *RegistryUsecase) ListUnclaimed(ctx context.Context) ([]*entities.UnclaimedToken, error) {
	return u.unclaimedRepo.List(ctx)
}
