package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Phone     *string   `gorm:"type:varchar(32);index"`
	Token     string    `gorm:"type:varchar(8);index"`
	Points    int64     `gorm:"not null;default:0"`
	Verified  bool      `gorm:"not null;default:false"`
	Status    string    `gorm:"type:varchar(20);not null;default:'unverified'"`
	IsAdmin   bool      `gorm:"not null;default:false"`
	IsVendor  bool      `gorm:"not null;default:false"`
	JoinedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
