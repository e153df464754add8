package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential backs the local credential provider. The id doubles as the
// canonical user id allocated at registration.
type Credential struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordReset tokens are issued by the credential provider; consuming one
// changes the credential only.
type PasswordReset struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email      string    `gorm:"type:varchar(255);not null;index"`
	Token      string    `gorm:"type:varchar(255);not null;index"`
	ExpiresAt  time.Time `gorm:"not null"`
	ConsumedAt *time.Time
	CreatedAt  time.Time
}
