package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
)

// OTPRepository handles database operations for one-time passcodes
type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *OTPRepository) WithTx(tx *gorm.DB) *OTPRepository {
	return &OTPRepository{db: tx}
}

// Create inserts a new OTP record
func (r *OTPRepository) Create(otp *model.OTPCode) error {
	return r.db.Create(otp).Error
}

// Delete removes a record by ID (issuance rollback on delivery failure)
func (r *OTPRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&model.OTPCode{}).Error
}

// InvalidatePending consumes every not-yet-redeemed code for an owner and
// purpose, so a freshly issued code is the only live one. Superseded rows
// are stamped rather than deleted; they still count toward the issuance
// rate window.
func (r *OTPRepository) InvalidatePending(email string, purpose model.OTPPurpose, at time.Time) error {
	return r.db.Model(&model.OTPCode{}).
		Where("email = ? AND purpose = ? AND used_at IS NULL", email, purpose).
		Update("used_at", at).Error
}

// FindActive finds the unused, unexpired record for (owner, purpose) whose
// code equals the supplied one. Codes are compared as strings so leading
// zeros survive.
func (r *OTPRepository) FindActive(email, code string, purpose model.OTPPurpose, now time.Time) (*model.OTPCode, error) {
	var otp model.OTPCode
	err := r.db.
		Where("email = ? AND code = ? AND purpose = ? AND expires_at > ? AND used_at IS NULL",
			email, code, purpose, now).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// MarkVerified stamps the verification time on a record
func (r *OTPRepository) MarkVerified(id uuid.UUID, at time.Time) error {
	return r.db.Model(&model.OTPCode{}).
		Where("id = ?", id).
		Update("verified_at", at).Error
}

// FindVerified loads the record behind a redemption handle, provided it is
// still unredeemed, was previously verified, and belongs to this owner and
// code. Expiry is deliberately not re-checked here: verification already
// happened inside the validity window.
func (r *OTPRepository) FindVerified(id uuid.UUID, email, code string, purpose model.OTPPurpose) (*model.OTPCode, error) {
	var otp model.OTPCode
	err := r.db.
		Where("id = ? AND email = ? AND code = ? AND purpose = ? AND used_at IS NULL AND verified_at IS NOT NULL",
			id, email, code, purpose).
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// MarkUsed redeems a record. Terminal: a used code never matches again.
func (r *OTPRepository) MarkUsed(id uuid.UUID, at time.Time) error {
	return r.db.Model(&model.OTPCode{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at).Error
}

// CountRecent counts codes issued to an owner since the given time (fallback
// rate limiting when redis is unavailable)
func (r *OTPRepository) CountRecent(email string, purpose model.OTPPurpose, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.OTPCode{}).
		Where("email = ? AND purpose = ? AND created_at > ?", email, purpose, since).
		Count(&count).Error
	return count, err
}

// CleanupExpired reclaims codes whose validity ended before the cutoff.
// Expiry is enforced lazily on lookup; this only trims the table. Callers
// pass a cutoff at least one rate window in the past so the issuance-count
// fallback keeps its evidence.
func (r *OTPRepository) CleanupExpired(cutoff time.Time) error {
	return r.db.
		Where("expires_at < ?", cutoff).
		Delete(&model.OTPCode{}).Error
}
