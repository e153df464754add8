package entities

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// NormalizePhone reduces a phone number to +digits form. Numbers without a
// leading + get one prepended after stripping separators.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return "+" + b.String()
}

// UserRole is a grantable role flag. Grants are monotone: once given,
// a role is not revoked.
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleVendor UserRole = "vendor"
)

// UserStatus represents account lifecycle status
type UserStatus string

const (
	UserStatusUnverified UserStatus = "unverified"
	UserStatusActive     UserStatus = "active"
)

// User represents a bin user identity
type User struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Phone     null.String `json:"phone,omitempty"`
	Token     string      `json:"token,omitempty"`
	Points    int64       `json:"points"`
	Verified  bool        `json:"verified"`
	Status    UserStatus  `json:"status"`
	IsAdmin   bool        `json:"isAdmin"`
	IsVendor  bool        `json:"isVendor"`
	CreatedAt time.Time   `json:"createdAt"`
	JoinedAt  time.Time   `json:"joinedAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// RegisterInput represents input for direct registration
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Token    string `json:"token" binding:"required"`
}

// LoginInput represents input for user login. Either email or phone must be
// set; phone login resolves the account first and then checks the credential.
type LoginInput struct {
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required"`
	UseSession bool   `json:"useSession"` // store tokens in Redis and return SessionID
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
	User         *User  `json:"user"`
}

// ChangePasswordInput represents input for changing user password.
// CurrentPassword is required on every call: sensitive mutations demand
// fresh reauthentication regardless of session age.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required,min=6"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// UpdateProfileInput represents a profile update. Changing the phone drops
// the account back to unverified; email changes go through the dedicated
// change-email flow because they re-key the credential.
type UpdateProfileInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
