package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenBinding rows are permanent. The token primary key is what makes two
// racing claims resolve to exactly one winner.
type TokenBinding struct {
	Token     string    `gorm:"type:varchar(8);primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time
}

// UnclaimedToken is keyed by token value, not scan id: repeat scans before
// a claim collapse into one live row.
type UnclaimedToken struct {
	Token     string    `gorm:"type:varchar(8);primaryKey"`
	ScannedAt time.Time `gorm:"not null"`
}
