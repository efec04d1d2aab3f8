package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
)

func newOTPTestEnv(t *testing.T) (*OTPManager, *fakeMailer, *testClock, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	mailer := &fakeMailer{}
	clk := newTestClock()
	mgr := newTestOTPManager(db, mailer, clk, testSecurityConfig())
	return mgr, mailer, clk, db
}

func TestOTPManager_IssueDeliversCode(t *testing.T) {
	mgr, mailer, clk, db := newOTPTestEnv(t)

	otp, err := mgr.Issue("Student@DentaNet.edu", "Ada", model.OTPPurposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, "student@dentanet.edu", otp.Email)
	assert.Len(t, otp.Code, 6)
	assert.Equal(t, clk.Now().Add(5*time.Minute), otp.ExpiresAt)

	mail := mailer.lastOTP(t)
	assert.Equal(t, "student@dentanet.edu", mail.To)
	assert.Equal(t, otp.Code, mail.Code)
	assert.Equal(t, 5, mail.Minutes)

	var count int64
	require.NoError(t, db.Model(&model.OTPCode{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOTPManager_IssueSupersedesPendingCode(t *testing.T) {
	mgr, _, _, _ := newOTPTestEnv(t)

	first, err := mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	require.NoError(t, err)
	second, err := mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	require.NoError(t, err)

	_, err = mgr.Verify("student@dentanet.edu", first.Code, model.OTPPurposeRegistration)
	if first.Code != second.Code {
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}

	_, err = mgr.Verify("student@dentanet.edu", second.Code, model.OTPPurposeRegistration)
	assert.NoError(t, err)
}

func TestOTPManager_VerifyExpiredCode(t *testing.T) {
	mgr, _, clk, _ := newOTPTestEnv(t)

	otp, err := mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	require.NoError(t, err)

	clk.Advance(5*time.Minute + time.Second)

	_, err = mgr.Verify("student@dentanet.edu", otp.Code, model.OTPPurposeRegistration)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestOTPManager_VerifyIndistinguishableFailures(t *testing.T) {
	mgr, _, _, _ := newOTPTestEnv(t)

	// No code at all
	_, err := mgr.Verify("student@dentanet.edu", "123456", model.OTPPurposeRegistration)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	otp, err := mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	require.NoError(t, err)

	// Wrong code
	wrong := "000000"
	if otp.Code == wrong {
		wrong = "000001"
	}
	_, err = mgr.Verify("student@dentanet.edu", wrong, model.OTPPurposeRegistration)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	// Wrong purpose
	_, err = mgr.Verify("student@dentanet.edu", otp.Code, model.OTPPurposePasswordReset)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestOTPManager_LeadingZeroCodesCompareAsText(t *testing.T) {
	mgr, _, clk, db := newOTPTestEnv(t)
	otps := repository.NewOTPRepository(db)

	record := &model.OTPCode{
		ID:        uuid.New(),
		Email:     "student@dentanet.edu",
		Code:      "007123",
		Purpose:   model.OTPPurposeRegistration,
		ExpiresAt: clk.Now().Add(5 * time.Minute),
		CreatedAt: clk.Now(),
	}
	require.NoError(t, otps.Create(record))

	// The numerically equal but textually different form must not match
	_, err := mgr.Verify("student@dentanet.edu", "7123", model.OTPPurposeRegistration)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	handle, err := mgr.Verify("student@dentanet.edu", "007123", model.OTPPurposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, record.ID, handle)
}

func TestOTPManager_RedeemConsumesOnce(t *testing.T) {
	mgr, _, _, _ := newOTPTestEnv(t)

	otp, err := mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	require.NoError(t, err)

	handle, err := mgr.Verify("student@dentanet.edu", otp.Code, model.OTPPurposeRegistration)
	require.NoError(t, err)

	mutations := 0
	err = mgr.Redeem(handle, "student@dentanet.edu", otp.Code, model.OTPPurposeRegistration, func(tx *gorm.DB) error {
		mutations++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, mutations)

	// A spent code never redeems again
	err = mgr.Redeem(handle, "student@dentanet.edu", otp.Code, model.OTPPurposeRegistration, func(tx *gorm.DB) error {
		mutations++
		return nil
	})
	assert.ErrorIs(t, err, ErrOTPNotVerified)
	assert.Equal(t, 1, mutations)
}

func TestOTPManager_RedeemRequiresVerification(t *testing.T) {
	mgr, _, _, _ := newOTPTestEnv(t)

	otp, err := mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	require.NoError(t, err)

	err = mgr.Redeem(otp.ID, "student@dentanet.edu", otp.Code, model.OTPPurposeRegistration, nil)
	assert.ErrorIs(t, err, ErrOTPNotVerified)
}

func TestOTPManager_RedeemAfterExpiryWhenVerifiedInWindow(t *testing.T) {
	mgr, _, clk, _ := newOTPTestEnv(t)

	otp, err := mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	require.NoError(t, err)

	handle, err := mgr.Verify("student@dentanet.edu", otp.Code, model.OTPPurposeRegistration)
	require.NoError(t, err)

	// Verification happened inside the window; the account mutation may
	// land after the code itself has expired
	clk.Advance(10 * time.Minute)

	err = mgr.Redeem(handle, "student@dentanet.edu", otp.Code, model.OTPPurposeRegistration, nil)
	assert.NoError(t, err)
}

func TestOTPManager_RedeemRollsBackWithMutation(t *testing.T) {
	mgr, _, _, _ := newOTPTestEnv(t)

	otp, err := mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	require.NoError(t, err)

	handle, err := mgr.Verify("student@dentanet.edu", otp.Code, model.OTPPurposeRegistration)
	require.NoError(t, err)

	boom := errors.New("constraint violation")
	err = mgr.Redeem(handle, "student@dentanet.edu", otp.Code, model.OTPPurposeRegistration, func(tx *gorm.DB) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// The rollback leaves the code verified and unused, so a corrected
	// retry can still redeem it
	err = mgr.Redeem(handle, "student@dentanet.edu", otp.Code, model.OTPPurposeRegistration, nil)
	assert.NoError(t, err)
}

func TestOTPManager_StrictDeliveryFailureRollsBack(t *testing.T) {
	mgr, mailer, _, db := newOTPTestEnv(t)
	mailer.Fail = true

	_, err := mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	assert.ErrorIs(t, err, ErrOTPDeliveryFailed)

	// No dead row may survive to block the retry via supersession
	var count int64
	require.NoError(t, db.Model(&model.OTPCode{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	mailer.Fail = false
	_, err = mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	assert.NoError(t, err)
}

func TestOTPManager_RateLimitFallback(t *testing.T) {
	mgr, _, clk, _ := newOTPTestEnv(t)

	for i := 0; i < 3; i++ {
		_, err := mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
		require.NoError(t, err)
	}

	_, err := mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	assert.ErrorIs(t, err, ErrTooManyOTPRequests)

	// Another purpose and another owner are throttled independently
	_, err = mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposePasswordReset)
	assert.NoError(t, err)
	_, err = mgr.Issue("other@dentanet.edu", "Eve", model.OTPPurposeRegistration)
	assert.NoError(t, err)

	// The window slides
	clk.Advance(time.Hour + time.Minute)
	_, err = mgr.Issue("student@dentanet.edu", "Ada", model.OTPPurposeRegistration)
	assert.NoError(t, err)
}

func TestOTPManager_TTLPerPurpose(t *testing.T) {
	mgr, _, _, _ := newOTPTestEnv(t)
	assert.Equal(t, 5*time.Minute, mgr.TTL(model.OTPPurposeRegistration))
	assert.Equal(t, 2*time.Minute, mgr.TTL(model.OTPPurposePasswordReset))
}
