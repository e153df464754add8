package usecases

import (
	"context"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"smart-bin.backend/internal/domain/entities"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/domain/repositories"
)

// LedgerUsecase maintains the points ledger and the cached balances.
// Every balance mutation appends an entry and adjusts users.points in the
// same transaction, so the cache never diverges from the ledger sum.
type LedgerUsecase struct {
	uow          repositories.UnitOfWork
	userRepo     repositories.UserRepository
	ledgerRepo   repositories.LedgerRepository
	registryRepo repositories.TokenRegistryRepository
}

// NewLedgerUsecase creates a new ledger usecase
func NewLedgerUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	ledgerRepo repositories.LedgerRepository,
	registryRepo repositories.TokenRegistryRepository,
) *LedgerUsecase {
	return &LedgerUsecase{
		uow:          uow,
		userRepo:     userRepo,
		ledgerRepo:   ledgerRepo,
		registryRepo: registryRepo,
	}
}

// Credit appends an earn entry and increments the cached balance
func (u *LedgerUsecase) Credit(ctx context.Context, userID uuid.UUID, points int64, source string) (*entities.LedgerEntry, error) {
	if points <= 0 {
		return nil, domainerrors.NewError("points must be a positive integer", domainerrors.ErrInvalidInput)
	}

	entry := &entities.LedgerEntry{
		ID:     uuid.New(),
		UserID: userID,
		Points: points,
		Source: source,
		Type:   entities.LedgerEntryEarn,
	}
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Credit(txCtx, userID, points); err != nil {
			return err
		}
		return u.ledgerRepo.Append(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CreditByToken resolves a bound RFID token to its user and credits it.
// This is the bin hardware's entry point: the bin only knows the token.
func (u *LedgerUsecase) CreditByToken(ctx context.Context, token string, points int64, source string) (*entities.LedgerEntry, error) {
	normalized, err := entities.NormalizeToken(token)
	if err != nil {
		return nil, err
	}
	userID, err := u.registryRepo.GetBinding(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return u.Credit(ctx, userID, points, source)
}

// Redeem debits a user on behalf of a vendor. The balance check and the
// debit are the same conditional write inside one transaction, so N
// concurrent redemptions can never jointly overdraw.
func (u *LedgerUsecase) Redeem(ctx context.Context, vendor *entities.User, input *entities.RedeemInput) (*entities.LedgerEntry, error) {
	if !vendor.IsVendor {
		return nil, domainerrors.ErrForbidden
	}
	if input.Points <= 0 {
		return nil, domainerrors.NewError("points must be a positive integer", domainerrors.ErrInvalidInput)
	}

	entry := &entities.LedgerEntry{
		ID:       uuid.New(),
		UserID:   input.UserID,
		VendorID: null.StringFrom(vendor.ID.String()),
		Points:   -input.Points,
		Type:     entities.LedgerEntryRedemption,
	}
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Debit(txCtx, input.UserID, input.Points); err != nil {
			return err
		}
		return u.ledgerRepo.Append(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Balance returns the cached balance for a user
func (u *LedgerUsecase) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Points, nil
}

// History returns a user's ledger entries, newest first
func (u *LedgerUsecase) History(ctx context.Context, userID uuid.UUID) ([]*entities.LedgerEntry, error) {
	return u.ledgerRepo.ListByUser(ctx, userID)
}

// GrantAdmin sets the admin flag; idempotent, admin-only
func (u *LedgerUsecase) GrantAdmin(ctx context.Context, caller *entities.User, target uuid.UUID) error {
	if !caller.IsAdmin {
		return domainerrors.ErrForbidden
	}
	return u.userRepo.GrantRole(ctx, target, entities.UserRoleAdmin)
}

// GrantVendor sets the vendor flag; idempotent, admin-only
func (u *LedgerUsecase) GrantVendor(ctx context.Context, caller *entities.User, target uuid.UUID) error {
	if !caller.IsAdmin {
		return domainerrors.ErrForbidden
	}
	return u.userRepo.GrantRole(ctx, target, entities.UserRoleVendor)
}

// Report aggregates redeemed totals per user and per vendor for the admin
// screen.
func (u *LedgerUsecase) Report(ctx context.Context, caller *entities.User) (*entities.AdminReport, error) {
	if !caller.IsAdmin {
		return nil, domainerrors.ErrForbidden
	}

	users, err := u.userRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	entries, err := u.ledgerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	redeemedByUser := make(map[uuid.UUID]int64)
	redeemedByVendor := make(map[string]int64)
	for _, e := range entries {
		if e.Points >= 0 {
			continue
		}
		redeemedByUser[e.UserID] += -e.Points
		if e.VendorID.Valid {
			redeemedByVendor[e.VendorID.String] += -e.Points
		}
	}

	report := &entities.AdminReport{
		TotalUsers:        len(users),
		TotalTransactions: len(entries),
	}
	for _, user := range users {
		report.Users = append(report.Users, &entities.ReportUserRow{
			User:           user,
			RedeemedPoints: redeemedByUser[user.ID],
		})
		if user.IsVendor {
			report.Vendors = append(report.Vendors, &entities.ReportVendorRow{
				Vendor:         user,
				PointsRedeemed: redeemedByVendor[user.ID.String()],
			})
		}
	}
	return report, nil
}
