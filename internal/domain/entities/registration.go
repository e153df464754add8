package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PendingRegistration holds an account waiting for email confirmation before
// it materializes as a full User. No auth credential exists yet. Expired
// records are rejected on read but not reaped.
type PendingRegistration struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Phone          null.String `json:"phone,omitempty"`
	Token          string      `json:"token"`
	VerifyToken    string      `json:"-"`
	VerifyExpires  time.Time   `json:"-"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// StartPendingInput begins the deferred registration flow
type StartPendingInput struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Phone string `json:"phone"`
	Token string `json:"token" binding:"required"`
}

// CompleteRegistrationInput finishes the deferred flow. The verification
// token proves ownership of the pending email; the password becomes the
// new credential.
type CompleteRegistrationInput struct {
	PendingID         uuid.UUID `json:"pendingId" binding:"required"`
	VerificationToken string    `json:"verificationToken" binding:"required"`
	Password          string    `json:"password" binding:"required,min=6"`
}
