package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingRegistration rows expire logically (VerifyExpires) but are not
// reaped; a deployment can clear stale rows out of band.
type PendingRegistration struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"type:varchar(100);not null"`
	Email         string    `gorm:"type:varchar(255);not null;index"`
	Phone         *string   `gorm:"type:varchar(32)"`
	Token         string    `gorm:"type:varchar(8);not null"`
	VerifyToken   string    `gorm:"type:varchar(255);not null;index"`
	VerifyExpires time.Time `gorm:"not null"`
	CreatedAt     time.Time
}
