package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"smart-bin.backend/internal/config"
	"smart-bin.backend/internal/domain/entities"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/domain/repositories"
	"smart-bin.backend/internal/notification"
	"smart-bin.backend/pkg/crypto"
	"smart-bin.backend/pkg/logger"
	"smart-bin.backend/pkg/redis"
)

const (
	otpSessionKeyPrefix = "otp:session:user:"
	lastSentKeyPrefix   = "verify:last-sent:"
)

// otpSession is the redis payload behind a phone verification session. It
// lives under a single per-account key, so issuing a new code and killing
// the previous one is one write.
type otpSession struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
}

func otpSessionKey(userID uuid.UUID) string {
	return otpSessionKeyPrefix + userID.String()
}

// VerificationUsecase drives the account verification state machine:
// Created → {PendingEmail | PendingPhone} → Verified → Active.
// Password reset is a side channel and never touches verification state.
type VerificationUsecase struct {
	uow            repositories.UnitOfWork
	userRepo       repositories.UserRepository
	emailVerifRepo repositories.EmailVerificationRepository
	creds          repositories.CredentialProvider
	dispatcher     notification.Dispatcher
	cfg            config.VerificationConfig
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	emailVerifRepo repositories.EmailVerificationRepository,
	creds repositories.CredentialProvider,
	dispatcher notification.Dispatcher,
	cfg config.VerificationConfig,
) *VerificationUsecase {
	return &VerificationUsecase{
		uow:            uow,
		userRepo:       userRepo,
		emailVerifRepo: emailVerifRepo,
		creds:          creds,
		dispatcher:     dispatcher,
		cfg:            cfg,
	}
}

// IssueEmailVerification issues a fresh single-use link token for the
// account, invalidating any previous one in the same transaction, and
// dispatches it. Returns the token for test and link construction.
func (u *VerificationUsecase) IssueEmailVerification(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	token, err := crypto.GenerateVerificationToken()
	if err != nil {
		return "", err
	}

	if err := u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.emailVerifRepo.Issue(txCtx, userID, token, time.Now().Add(u.cfg.EmailTokenTTL))
	}); err != nil {
		return "", err
	}

	u.markSent(ctx, userID)

	if _, err := u.dispatcher.Send(ctx, notification.ChannelEmail, user.Email, token); err != nil {
		// Delivery is fire-and-forget; the token stays valid for resend.
		logger.Warn(ctx, "verification email dispatch failed", zap.Error(err), zap.String("user_id", userID.String()))
	}
	return token, nil
}

// ConfirmEmail consumes a link token and marks the account verified.
// Activation is a separate, authenticated step.
func (u *VerificationUsecase) ConfirmEmail(ctx context.Context, token string) error {
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		userID, err := u.emailVerifRepo.Consume(txCtx, token)
		if err != nil {
			return err
		}
		return u.userRepo.SetVerification(txCtx, userID, true, entities.UserStatusUnverified)
	})
}

// StartPhoneVerification issues a 6-digit one-time code bound to a server
// session id. Issuing replaces any previous live code for the account.
func (u *VerificationUsecase) StartPhoneVerification(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.Phone.Valid || user.Phone.String == "" {
		return "", domainerrors.NewError("account has no phone number", domainerrors.ErrInvalidInput)
	}

	code, err := crypto.GenerateOTP()
	if err != nil {
		return "", err
	}

	sessionID := uuid.New().String()
	payload, err := json.Marshal(otpSession{SessionID: sessionID, Code: code})
	if err != nil {
		return "", err
	}

	// One live code per account: storing the new session is the same atomic
	// write that invalidates the previous one.
	if err := redis.Set(ctx, otpSessionKey(userID), string(payload), u.cfg.OTPTTL); err != nil {
		return "", err
	}

	u.markSent(ctx, userID)

	if _, err := u.dispatcher.Send(ctx, notification.ChannelSMS, user.Phone.String, code); err != nil {
		logger.Warn(ctx, "otp dispatch failed", zap.Error(err), zap.String("user_id", userID.String()))
	}
	return sessionID, nil
}

// ConfirmPhone consumes a one-time code exactly once. Consumed, expired or
// mismatched codes all fail the same way.
func (u *VerificationUsecase) ConfirmPhone(ctx context.Context, userID uuid.UUID, sessionID, code string) error {
	key := otpSessionKey(userID)
	raw, err := redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domainerrors.ErrInvalidOrExpiredCode
		}
		return err
	}

	var session otpSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return err
	}
	if session.SessionID != sessionID || session.Code != code {
		return domainerrors.ErrInvalidOrExpiredCode
	}

	// Flip the row first: a failed write leaves the code live for a retry.
	if err := u.userRepo.SetVerification(ctx, userID, true, entities.UserStatusUnverified); err != nil {
		return err
	}

	// Consume exactly the payload that was checked. A code issued
	// concurrently since the read stays live.
	if _, err := redis.DelIfEquals(ctx, key, raw); err != nil {
		logger.Warn(ctx, "otp session cleanup failed", zap.Error(err), zap.String("user_id", userID.String()))
	}
	return nil
}

// Activate moves a verified account to active. The caller must be the
// account owner: proving channel ownership via a link is deliberately not
// enough to activate a session.
func (u *VerificationUsecase) Activate(ctx context.Context, callerID uuid.UUID) error {
	user, err := u.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return err
	}
	if !user.Verified {
		return domainerrors.ErrNotVerified
	}
	if user.Status == entities.UserStatusActive {
		return nil
	}
	return u.userRepo.SetVerification(ctx, callerID, true, entities.UserStatusActive)
}

// Status reports the state machine position plus time since the last token
// or code was sent, so clients can enforce the resend cooldown themselves.
func (u *VerificationUsecase) Status(ctx context.Context, userID uuid.UUID) (*entities.VerificationStatus, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &entities.VerificationStatus{SecondsSinceSent: -1, CanResend: true}

	switch {
	case user.Status == entities.UserStatusActive:
		status.State = entities.VerificationActive
	case user.Verified:
		status.State = entities.VerificationVerified
	default:
		status.State = entities.VerificationCreated
		if _, err := u.emailVerifRepo.LatestIssuedAt(ctx, userID); err == nil {
			status.State = entities.VerificationPendingEmail
		} else if !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
		if _, err := redis.Get(ctx, otpSessionKey(userID)); err == nil {
			status.State = entities.VerificationPendingPhone
		} else if !errors.Is(err, goredis.Nil) {
			return nil, err
		}
	}

	if sentAt, ok := u.lastSentAt(ctx, userID); ok {
		elapsed := time.Since(sentAt)
		status.SecondsSinceSent = int64(elapsed.Seconds())
		status.CanResend = elapsed >= u.cfg.ResendCooldown
	}
	return status, nil
}

// RequestPasswordReset issues a reset token and dispatches it. Unknown
// emails are masked so the endpoint cannot be used for enumeration.
func (u *VerificationUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	token, err := u.creds.IssueResetToken(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			logger.Debug(ctx, "password reset for unknown email")
			return nil
		}
		return err
	}
	if _, err := u.dispatcher.Send(ctx, notification.ChannelEmail, email, token); err != nil {
		logger.Warn(ctx, "password reset dispatch failed", zap.Error(err))
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
// Verification state is untouched.
func (u *VerificationUsecase) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return u.creds.ConsumeResetToken(ctx, token, newPassword)
}

func (u *VerificationUsecase) markSent(ctx context.Context, userID uuid.UUID) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := redis.Set(ctx, lastSentKeyPrefix+userID.String(), now, 24*time.Hour); err != nil {
		logger.Warn(ctx, "failed to record verification send time", zap.Error(err))
	}
}

func (u *VerificationUsecase) lastSentAt(ctx context.Context, userID uuid.UUID) (time.Time, bool) {
	raw, err := redis.Get(ctx, lastSentKeyPrefix+userID.String())
	if err != nil {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}
