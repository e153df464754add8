package repositories

import (
	"context"

	"github.com/google/uuid"
)

// CredentialProvider is the external auth collaborator. It owns credential
// storage and allocates the canonical user id at credential creation.
// The core never stores passwords itself.
type CredentialProvider interface {
	// CreateCredential allocates a user id for the email+password pair.
	// Returns ErrAlreadyExists when the email is taken.
	CreateCredential(ctx context.Context, email, password string) (uuid.UUID, error)
	// DeleteCredential removes a credential; used as the registration
	// saga's compensating action.
	DeleteCredential(ctx context.Context, userID uuid.UUID) error
	// VerifyCredential checks the pair and returns the owning user id, or
	// ErrInvalidCredentials.
	VerifyCredential(ctx context.Context, email, password string) (uuid.UUID, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error
	// UpdateEmail re-keys the credential. Returns ErrAlreadyExists when the
	// new email is taken.
	UpdateEmail(ctx context.Context, userID uuid.UUID, newEmail string) error
	// IssueResetToken produces a password reset token for the email.
	// Consuming it changes the credential only, never verification state.
	IssueResetToken(ctx context.Context, email string) (string, error)
	ConsumeResetToken(ctx context.Context, token, newPassword string) error
}
