package model

import (
	"time"

	"github.com/google/uuid"
)

// OTPPurpose defines what the OTP code authorizes
type OTPPurpose string

const (
	OTPPurposeRegistration  OTPPurpose = "registration"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

// OTPCode represents a one-time passcode bound to an email address.
// Registration codes are issued before any user row exists, so the owner key
// is the email itself rather than a user id. A code moves through
// unused -> verified -> used; used is terminal, and an expired code that was
// never verified is treated as invalid on any check.
type OTPCode struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email      string     `json:"email" gorm:"size:255;not null;index"`
	Code       string     `json:"-" gorm:"size:6;not null"` // zero-padded 6-digit string
	Purpose    OTPPurpose `json:"purpose" gorm:"type:otp_purpose;not null"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null"`
	VerifiedAt *time.Time `json:"verified_at"` // set on successful verify, before redemption
	UsedAt     *time.Time `json:"used_at"`     // NULL = not yet redeemed
	CreatedAt  time.Time  `json:"created_at"`
}

// IsExpiredAt checks if the code has expired at the given instant
func (o *OTPCode) IsExpiredAt(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// IsUsed checks if the code has already been redeemed
func (o *OTPCode) IsUsed() bool {
	return o.UsedAt != nil
}

// IsVerified checks if the code passed the verification step
func (o *OTPCode) IsVerified() bool {
	return o.VerifiedAt != nil
}
