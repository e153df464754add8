package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"smart-bin.backend/internal/domain/entities"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/domain/repositories"
	"smart-bin.backend/internal/notification"
	"smart-bin.backend/pkg/crypto"
	"smart-bin.backend/pkg/logger"
)

// RegistrationUsecase orchestrates the registration saga: credential
// creation with the external provider, then the atomic user+claim write,
// with explicit compensation when the second half fails.
type RegistrationUsecase struct {
	uow          repositories.UnitOfWork
	userRepo     repositories.UserRepository
	pendingRepo  repositories.PendingRegistrationRepository
	unclaimedRepo repositories.UnclaimedTokenRepository
	registry     *RegistryUsecase
	verification *VerificationUsecase
	creds        repositories.CredentialProvider
	dispatcher   notification.Dispatcher
	pendingTTL   time.Duration
}

// NewRegistrationUsecase creates a new registration usecase
func NewRegistrationUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	pendingRepo repositories.PendingRegistrationRepository,
	unclaimedRepo repositories.UnclaimedTokenRepository,
	registry *RegistryUsecase,
	verification *VerificationUsecase,
	creds repositories.CredentialProvider,
	dispatcher notification.Dispatcher,
	pendingTTL time.Duration,
) *RegistrationUsecase {
	return &RegistrationUsecase{
		uow:           uow,
		userRepo:      userRepo,
		pendingRepo:   pendingRepo,
		unclaimedRepo: unclaimedRepo,
		registry:      registry,
		verification:  verification,
		creds:         creds,
		dispatcher:    dispatcher,
		pendingTTL:    pendingTTL,
	}
}

// Register runs the direct registration path: the account is created
// unverified and email confirmation follows.
func (u *RegistrationUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, error) {
	token, err := entities.NormalizeToken(input.Token)
	if err != nil {
		return nil, err
	}

	availability, err := u.registry.CheckAvailability(ctx, token)
	if err != nil {
		return nil, err
	}
	if availability != entities.TokenAvailable {
		return nil, domainerrors.NewError("token is not available for registration", domainerrors.ErrTokenNotAvailable)
	}

	// Step 2: allocate the canonical user id with the auth collaborator.
	userID, err := u.creds.CreateCredential(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entities.User{
		ID:        userID,
		Email:     input.Email,
		Name:      input.Name,
		Token:     token,
		Points:    0,
		Verified:  false,
		Status:    entities.UserStatusUnverified,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Phone != "" {
		user.Phone = null.StringFrom(entities.NormalizePhone(input.Phone))
	}

	// Step 3: user write and token claim commit or fail as one unit.
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		return u.registry.claimInTx(txCtx, token, userID)
	})
	if err != nil {
		u.compensateFailedRegistration(ctx, userID)
		if errors.Is(err, domainerrors.ErrConflict) {
			return nil, domainerrors.Conflict("token was claimed by a concurrent registration")
		}
		return nil, err
	}

	// Step 4: the account is committed; a failed issuance is recoverable
	// via resend and must not unwind the registration.
	if _, err := u.verification.IssueEmailVerification(ctx, userID); err != nil {
		logger.Warn(ctx, "verification issuance after registration failed",
			zap.Error(err), zap.String("user_id", userID.String()))
	}

	return user, nil
}

// compensateFailedRegistration deletes the orphaned auth credential after a
// failed saga. Best-effort: its own failure is logged, not escalated — a
// retrying user then observes email-already-in-use.
func (u *RegistrationUsecase) compensateFailedRegistration(ctx context.Context, userID uuid.UUID) {
	if err := u.creds.DeleteCredential(ctx, userID); err != nil {
		logger.Error(ctx, "registration compensation failed, credential orphaned",
			zap.Error(err), zap.String("user_id", userID.String()))
	}
}

// StartPendingRegistration begins the deferred flow: no credential yet,
// just a pending record plus an emailed verification token.
func (u *RegistrationUsecase) StartPendingRegistration(ctx context.Context, input *entities.StartPendingInput) (*entities.PendingRegistration, error) {
	token, err := entities.NormalizeToken(input.Token)
	if err != nil {
		return nil, err
	}

	availability, err := u.registry.CheckAvailability(ctx, token)
	if err != nil {
		return nil, err
	}
	if availability != entities.TokenAvailable {
		return nil, domainerrors.NewError("token is not available for registration", domainerrors.ErrTokenNotAvailable)
	}

	verifyToken, err := crypto.GenerateVerificationToken()
	if err != nil {
		return nil, err
	}

	pending := &entities.PendingRegistration{
		ID:            uuid.New(),
		Name:          input.Name,
		Email:         input.Email,
		Token:         token,
		VerifyToken:   verifyToken,
		VerifyExpires: time.Now().Add(u.pendingTTL),
		CreatedAt:     time.Now(),
	}
	if input.Phone != "" {
		pending.Phone = null.StringFrom(entities.NormalizePhone(input.Phone))
	}

	if err := u.pendingRepo.Create(ctx, pending); err != nil {
		return nil, err
	}

	if _, err := u.dispatcher.Send(ctx, notification.ChannelEmail, pending.Email, verifyToken); err != nil {
		logger.Warn(ctx, "pending registration dispatch failed", zap.Error(err))
	}
	return pending, nil
}

// ResendPendingVerification reissues the pending verification token.
// The previous token is invalidated by the same write.
func (u *RegistrationUsecase) ResendPendingVerification(ctx context.Context, pendingID uuid.UUID) error {
	pending, err := u.pendingRepo.GetByID(ctx, pendingID)
	if err != nil {
		return err
	}

	verifyToken, err := crypto.GenerateVerificationToken()
	if err != nil {
		return err
	}
	if err := u.pendingRepo.Reissue(ctx, pendingID, verifyToken, time.Now().Add(u.pendingTTL)); err != nil {
		return err
	}

	if _, err := u.dispatcher.Send(ctx, notification.ChannelEmail, pending.Email, verifyToken); err != nil {
		logger.Warn(ctx, "pending registration dispatch failed", zap.Error(err))
	}
	return nil
}

// CompleteRegistration finishes the deferred flow. The verification token
// proves the caller owns the pending email; the whole materialization is
// one atomic transaction, so partial application is never observable.
func (u *RegistrationUsecase) CompleteRegistration(ctx context.Context, input *entities.CompleteRegistrationInput) (*entities.User, error) {
	pending, err := u.pendingRepo.GetByID(ctx, input.PendingID)
	if err != nil {
		return nil, err
	}
	if pending.VerifyToken != input.VerificationToken || time.Now().After(pending.VerifyExpires) {
		return nil, domainerrors.ErrInvalidOrExpiredCode
	}

	userID, err := u.creds.CreateCredential(ctx, pending.Email, input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entities.User{
		ID:        userID,
		Email:     pending.Email,
		Name:      pending.Name,
		Phone:     pending.Phone,
		Token:     pending.Token,
		Points:    0,
		Verified:  true,
		Status:    entities.UserStatusActive,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		if err := u.registry.registryRepo.Bind(txCtx, pending.Token, userID); err != nil {
			return err
		}
		if err := u.pendingRepo.Delete(txCtx, pending.ID); err != nil {
			return err
		}
		// Purge any stale unclaimed entry for the bound token. Absence is
		// fine here: the scan may predate the pending record's creation.
		if err := u.unclaimedRepo.Delete(txCtx, pending.Token); err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		u.compensateFailedRegistration(ctx, userID)
		if errors.Is(err, domainerrors.ErrConflict) {
			return nil, domainerrors.Conflict("token was claimed by a concurrent registration")
		}
		return nil, err
	}

	return user, nil
}
