package entities

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	domainerrors "smart-bin.backend/internal/domain/errors"
)

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

// NormalizeToken lowercases an RFID token and validates its format:
// exactly 8 hex characters.
func NormalizeToken(token string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if !tokenPattern.MatchString(t) {
		return "", domainerrors.NewError("token must be 8 hex characters", domainerrors.ErrInvalidInput)
	}
	return t, nil
}

// TokenAvailability is the three-way answer to an availability check.
// "Not registered" does not imply "claimable": a token must have been
// scanned by bin hardware before it can be claimed.
type TokenAvailability string

const (
	TokenRegistered TokenAvailability = "registered"
	TokenAvailable  TokenAvailability = "available"
	TokenUnknown    TokenAvailability = "unknown"
)

// TokenBinding maps a normalized token to the user that claimed it.
// At most one binding ever exists per token.
type TokenBinding struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnclaimedToken is a token scanned by hardware but not yet claimed.
// Keyed by token value: repeat scans overwrite, latest scan wins.
type UnclaimedToken struct {
	Token     string    `json:"token"`
	ScannedAt time.Time `json:"scannedAt"`
}
