package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEntry rows are append-only and never updated or deleted.
type LedgerEntry struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	VendorID  *uuid.UUID `gorm:"type:uuid;index"`
	Points    int64      `gorm:"not null"`
	Source    string     `gorm:"type:varchar(100)"`
	Type      string     `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
}
