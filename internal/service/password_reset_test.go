package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
)

func newResetTestEnv(t *testing.T) (*PasswordResetService, *fakeMailer, *repository.UserRepository) {
	t.Helper()
	db := setupTestDB(t)
	mailer := &fakeMailer{}
	clk := newTestClock()
	users := repository.NewUserRepository(db)
	otps := newTestOTPManager(db, mailer, clk, testSecurityConfig())

	hashed, err := bcrypt.GenerateFromPassword([]byte("Old@Pass99"), bcrypt.MinCost)
	require.NoError(t, err)
	seedUser(t, db, &model.User{
		ID:           uuid.New(),
		Email:        "ada.bello@dentanet.edu",
		PasswordHash: string(hashed),
		FullName:     "Ada Bello",
		FirstName:    "Ada",
		LastName:     "Bello",
		Role:         model.RoleStudent,
		IsActive:     true,
	})

	return NewPasswordResetService(users, otps), mailer, users
}

func TestPasswordReset_FullFlow(t *testing.T) {
	svc, mailer, users := newResetTestEnv(t)

	sent, err := svc.Request(model.RequestPasswordResetRequest{Email: "ada.bello@dentanet.edu"})
	require.NoError(t, err)
	assert.Equal(t, 120, sent.ExpiresIn)

	mail := mailer.lastReset(t)
	assert.Equal(t, "ada.bello@dentanet.edu", mail.To)
	assert.Equal(t, "Ada", mail.Name)
	assert.Equal(t, 2, mail.Minutes)

	verified, err := svc.VerifyOTP(model.VerifyResetOTPRequest{
		Email: "ada.bello@dentanet.edu",
		Code:  mail.Code,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, verified.TokenID)

	err = svc.Reset(model.ResetPasswordRequest{
		Email:       "ada.bello@dentanet.edu",
		Code:        mail.Code,
		TokenID:     verified.TokenID,
		NewPassword: "New@Pass123",
	})
	require.NoError(t, err)

	user, err := users.FindByEmail("ada.bello@dentanet.edu")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("New@Pass123")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Old@Pass99")))

	// The handle is single-use
	err = svc.Reset(model.ResetPasswordRequest{
		Email:       "ada.bello@dentanet.edu",
		Code:        mail.Code,
		TokenID:     verified.TokenID,
		NewPassword: "Other@Pass123",
	})
	assert.ErrorIs(t, err, ErrOTPNotVerified)
}

func TestPasswordReset_UnknownEmailIndistinguishable(t *testing.T) {
	svc, mailer, _ := newResetTestEnv(t)

	known, err := svc.Request(model.RequestPasswordResetRequest{Email: "ada.bello@dentanet.edu"})
	require.NoError(t, err)
	unknown, err := svc.Request(model.RequestPasswordResetRequest{Email: "ghost@dentanet.edu"})
	require.NoError(t, err)

	// Same message and expiry either way; only the mailbox differs
	assert.Equal(t, known.Message, unknown.Message)
	assert.Equal(t, known.ExpiresIn, unknown.ExpiresIn)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Len(t, mailer.Resets, 1)
}

func TestPasswordReset_InactiveAccountGetsNoCode(t *testing.T) {
	svc, mailer, users := newResetTestEnv(t)

	user, err := users.FindByEmail("ada.bello@dentanet.edu")
	require.NoError(t, err)
	require.NoError(t, users.Deactivate(user.ID))

	resp, err := svc.Request(model.RequestPasswordResetRequest{Email: "ada.bello@dentanet.edu"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Empty(t, mailer.Resets)
}

func TestPasswordReset_ResetWithoutVerification(t *testing.T) {
	svc, mailer, _ := newResetTestEnv(t)

	_, err := svc.Request(model.RequestPasswordResetRequest{Email: "ada.bello@dentanet.edu"})
	require.NoError(t, err)
	mail := mailer.lastReset(t)

	err = svc.Reset(model.ResetPasswordRequest{
		Email:       "ada.bello@dentanet.edu",
		Code:        mail.Code,
		TokenID:     uuid.New(),
		NewPassword: "New@Pass123",
	})
	assert.ErrorIs(t, err, ErrOTPNotVerified)
}

func TestPasswordReset_WeakPasswordLeavesHandleRedeemable(t *testing.T) {
	svc, mailer, _ := newResetTestEnv(t)

	_, err := svc.Request(model.RequestPasswordResetRequest{Email: "ada.bello@dentanet.edu"})
	require.NoError(t, err)
	mail := mailer.lastReset(t)

	verified, err := svc.VerifyOTP(model.VerifyResetOTPRequest{
		Email: "ada.bello@dentanet.edu",
		Code:  mail.Code,
	})
	require.NoError(t, err)

	req := model.ResetPasswordRequest{
		Email:       "ada.bello@dentanet.edu",
		Code:        mail.Code,
		TokenID:     verified.TokenID,
		NewPassword: "short",
	}
	var verr *ValidationError
	assert.ErrorAs(t, svc.Reset(req), &verr)

	req.NewPassword = "New@Pass123"
	assert.NoError(t, svc.Reset(req))
}
