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
	"smart-bin.backend/pkg/jwt"
	"smart-bin.backend/pkg/logger"
	"smart-bin.backend/pkg/redis"
)

// AuthUsecase handles authentication and profile business logic
type AuthUsecase struct {
	userRepo     repositories.UserRepository
	creds        repositories.CredentialProvider
	verification *VerificationUsecase
	jwtService   *jwt.JWTService
	sessionStore *redis.SessionStore
	sessionTTL   time.Duration
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	creds repositories.CredentialProvider,
	verification *VerificationUsecase,
	jwtService *jwt.JWTService,
	sessionStore *redis.SessionStore,
	sessionTTL time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:     userRepo,
		creds:        creds,
		verification: verification,
		jwtService:   jwtService,
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
	}
}

// Login authenticates by email+password or phone+password. Phone login
// resolves the account first and then checks the same credential.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	email := input.Email
	if email == "" {
		if input.Phone == "" {
			return nil, domainerrors.NewError("email or phone is required", domainerrors.ErrInvalidInput)
		}
		user, err := u.userRepo.GetByPhone(ctx, entities.NormalizePhone(input.Phone))
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return nil, domainerrors.ErrInvalidCredentials
			}
			return nil, err
		}
		email = user.Email
	}

	userID, err := u.creds.VerifyCredential(ctx, email, input.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tokenPair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, user.IsAdmin, user.IsVendor)
	if err != nil {
		return nil, err
	}

	resp := &entities.AuthResponse{User: user}
	if input.UseSession && u.sessionStore != nil {
		sessionID := uuid.New().String()
		err := u.sessionStore.CreateSession(ctx, sessionID, &redis.SessionData{
			AccessToken:  tokenPair.AccessToken,
			RefreshToken: tokenPair.RefreshToken,
		}, u.sessionTTL)
		if err != nil {
			return nil, err
		}
		resp.SessionID = sessionID
	} else {
		resp.AccessToken = tokenPair.AccessToken
		resp.RefreshToken = tokenPair.RefreshToken
	}
	return resp, nil
}

// RefreshToken generates new tokens from a refresh token
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return u.jwtService.GenerateTokenPair(user.ID, user.Email, user.IsAdmin, user.IsVendor)
}

// ChangePassword rotates the credential. The current password is demanded
// on every call regardless of session age.
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID uuid.UUID, input *entities.ChangePasswordInput) error {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := u.creds.VerifyCredential(ctx, user.Email, input.CurrentPassword); err != nil {
		return err
	}
	return u.creds.UpdatePassword(ctx, userID, input.NewPassword)
}

// UpdateProfile applies name and phone changes. A phone change resets
// verification: the new number must be proven before reactivation.
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Phone != "" {
		normalized := entities.NormalizePhone(input.Phone)
		if !user.Phone.Valid || user.Phone.String != normalized {
			user.Phone = null.StringFrom(normalized)
			user.Verified = false
			user.Status = entities.UserStatusUnverified
		}
	}

	if err := u.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return u.userRepo.GetByID(ctx, userID)
}

// ChangeEmail re-keys the credential and resets verification. Fresh
// reauthentication is demanded via the current password. The credential
// write is compensated when the user-row write fails, so login stays
// keyed to the address the row shows.
func (u *AuthUsecase) ChangeEmail(ctx context.Context, userID uuid.UUID, newEmail, currentPassword string) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldEmail := user.Email
	if _, err := u.creds.VerifyCredential(ctx, oldEmail, currentPassword); err != nil {
		return nil, err
	}
	if err := u.creds.UpdateEmail(ctx, userID, newEmail); err != nil {
		return nil, err
	}

	user.Email = newEmail
	user.Verified = false
	user.Status = entities.UserStatusUnverified
	if err := u.userRepo.UpdateProfile(ctx, user); err != nil {
		if rbErr := u.creds.UpdateEmail(ctx, userID, oldEmail); rbErr != nil {
			logger.Error(ctx, "email change compensation failed, credential diverged",
				zap.Error(rbErr), zap.String("user_id", userID.String()))
		}
		return nil, err
	}

	// Back into the pending-email state right away.
	if _, err := u.verification.IssueEmailVerification(ctx, userID); err != nil {
		return nil, err
	}
	return u.userRepo.GetByID(ctx, userID)
}

// GetUserByID gets a user by ID
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

// ListUsers returns all users, optionally filtered by a search term over
// name and email. Admin-gated at the route.
func (u *AuthUsecase) ListUsers(ctx context.Context, search string) ([]*entities.User, error) {
	return u.userRepo.List(ctx, search)
}
