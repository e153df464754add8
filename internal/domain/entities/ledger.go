package entities

import (
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// LedgerEntryType classifies a point movement
type LedgerEntryType string

const (
	LedgerEntryEarn       LedgerEntryType = "earn"
	LedgerEntryRedemption LedgerEntryType = "redemption"
)

// LedgerEntry is an immutable signed point movement. Earn entries carry
// positive points, redemptions the negative magnitude. Timestamp is epoch
// millis for consumers.
type LedgerEntry struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	VendorID  null.String     `json:"vendorId"`
	Points    int64           `json:"points"`
	Source    string          `json:"source,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Type      LedgerEntryType `json:"type"`
}

// RedeemInput represents a vendor-initiated redemption
type RedeemInput struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Points int64     `json:"points" binding:"required,gt=0"`
}

// CreditInput represents a bin-initiated earn
type CreditInput struct {
	Token  string `json:"token" binding:"required"`
	Points int64  `json:"points" binding:"required,gt=0"`
	Source string `json:"source"`
}

// ReportUserRow aggregates a user's earned and redeemed totals
type ReportUserRow struct {
	User           *User `json:"user"`
	RedeemedPoints int64 `json:"redeemedPoints"`
}

// ReportVendorRow aggregates points a vendor has redeemed for users
type ReportVendorRow struct {
	Vendor         *User `json:"vendor"`
	PointsRedeemed int64 `json:"pointsRedeemed"`
}

// AdminReport is the JSON shape behind the admin reporting screen
type AdminReport struct {
	TotalUsers        int               `json:"totalUsers"`
	TotalTransactions int               `json:"totalTransactions"`
	Users             []*ReportUserRow  `json:"users"`
	Vendors           []*ReportVendorRow `json:"vendors"`
}
