package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
	"github.com/dentanet/api/pkg/auth"
)

func newAuthTestEnv(t *testing.T) (*AuthService, *testClock, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	clk := newTestClock()
	guard := NewLockoutGuard(users, testSecurityConfig())
	guard.now = clk.Now
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(users, guard, jwtManager, nil), clk, db
}

func seedLoginUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("Str0ng@Pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := seedUser(t, db, &model.User{
		ID:           uuid.New(),
		Email:        "ada.bello@dentanet.edu",
		PasswordHash: string(hashed),
		FullName:     "Ada Bello",
		FirstName:    "Ada",
		LastName:     "Bello",
		Role:         model.RoleStudent,
		IsActive:     true,
	})
	require.NoError(t, db.Create(&model.Student{
		ID:                 uuid.New(),
		UserID:             user.ID,
		BatchYear:          2024,
		RegistrationNumber: "DENT/2024/015",
	}).Error)
	return user
}

func TestAuth_LoginSuccess(t *testing.T) {
	svc, _, db := newAuthTestEnv(t)
	user := seedLoginUser(t, db)

	resp, err := svc.Login("ada.bello@dentanet.edu", "Str0ng@Pass", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	require.NotNil(t, resp.User.Student)
	assert.Equal(t, "DENT/2024/015", resp.User.Student.RegistrationNumber)

	claims, err := auth.NewJWTManager("test-secret", time.Hour).ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "student", claims.Role)
}

func TestAuth_LoginByRegistrationNumber(t *testing.T) {
	svc, _, db := newAuthTestEnv(t)
	user := seedLoginUser(t, db)

	resp, err := svc.Login("dent/2024/015", "Str0ng@Pass", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestAuth_WrongPasswordCountsDown(t *testing.T) {
	svc, _, db := newAuthTestEnv(t)
	seedLoginUser(t, db)

	_, err := svc.Login("ada.bello@dentanet.edu", "Wrong@Pass1", "10.0.0.1")
	var credErr *CredentialsError
	require.ErrorAs(t, err, &credErr)
	require.NotNil(t, credErr.RemainingAttempts)
	assert.Equal(t, 4, *credErr.RemainingAttempts)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_UnknownIdentifierGivesNoAttemptCount(t *testing.T) {
	svc, _, db := newAuthTestEnv(t)
	seedLoginUser(t, db)

	_, err := svc.Login("ghost@dentanet.edu", "Str0ng@Pass", "10.0.0.1")
	var credErr *CredentialsError
	require.ErrorAs(t, err, &credErr)
	assert.Nil(t, credErr.RemainingAttempts)
}

func TestAuth_LockoutBlocksCorrectPassword(t *testing.T) {
	svc, clk, db := newAuthTestEnv(t)
	seedLoginUser(t, db)

	for i := 0; i < 4; i++ {
		_, err := svc.Login("ada.bello@dentanet.edu", "Wrong@Pass1", "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// The fifth failure trips the lock
	_, err := svc.Login("ada.bello@dentanet.edu", "Wrong@Pass1", "10.0.0.1")
	var lockErr *LockedError
	require.ErrorAs(t, err, &lockErr)
	assert.Equal(t, 15, lockErr.RetryAfterMinutes)

	// Even the correct password is refused while locked
	_, err = svc.Login("ada.bello@dentanet.edu", "Str0ng@Pass", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// After the lock elapses, login works again
	clk.Advance(16 * time.Minute)
	_, err = svc.Login("ada.bello@dentanet.edu", "Str0ng@Pass", "10.0.0.1")
	assert.NoError(t, err)
}

func TestAuth_SuccessResetsAttemptCounter(t *testing.T) {
	svc, _, db := newAuthTestEnv(t)
	user := seedLoginUser(t, db)

	for i := 0; i < 3; i++ {
		_, _ = svc.Login("ada.bello@dentanet.edu", "Wrong@Pass1", "10.0.0.1")
	}
	_, err := svc.Login("ada.bello@dentanet.edu", "Str0ng@Pass", "10.0.0.1")
	require.NoError(t, err)

	var fresh model.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, 0, fresh.LoginAttempts)
	require.NotNil(t, fresh.LastLoginAt)
}

func TestAuth_InactiveAccount(t *testing.T) {
	svc, _, db := newAuthTestEnv(t)
	user := seedLoginUser(t, db)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	_, err := svc.Login("ada.bello@dentanet.edu", "Str0ng@Pass", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAccountInactive)
}
