package entities

// VerificationState is the verification state machine position for an
// account. PasswordReset is a side channel and never appears here.
type VerificationState string

const (
	VerificationCreated      VerificationState = "created"
	VerificationPendingEmail VerificationState = "pending_email"
	VerificationPendingPhone VerificationState = "pending_phone"
	VerificationVerified     VerificationState = "verified"
	VerificationActive       VerificationState = "active"
)

// VerificationStatus is the pollable answer for a single account. Callers
// enforce the resend cooldown from SecondsSinceSent; the core owns no timers.
type VerificationStatus struct {
	State            VerificationState `json:"state"`
	SecondsSinceSent int64             `json:"secondsSinceSent"`
	CanResend        bool              `json:"canResend"`
}

// ConfirmPhoneInput consumes a one-time code against a verification session
type ConfirmPhoneInput struct {
	SessionID string `json:"sessionId" binding:"required"`
	Code      string `json:"code" binding:"required,len=6"`
}
