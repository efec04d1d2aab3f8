package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
)

func newTestLockoutGuard(t *testing.T) (*LockoutGuard, *repository.UserRepository, *testClock) {
	t.Helper()
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	clk := newTestClock()
	guard := NewLockoutGuard(users, testSecurityConfig())
	guard.now = clk.Now
	return guard, users, clk
}

func lockoutTestUser(t *testing.T, users *repository.UserRepository) *model.User {
	t.Helper()
	user := &model.User{
		ID:           uuid.New(),
		Email:        "student@dentanet.edu",
		PasswordHash: "x",
		FullName:     "Test Student",
		FirstName:    "Test",
		LastName:     "Student",
		Role:         model.RoleStudent,
		IsActive:     true,
	}
	require.NoError(t, users.Create(user))
	return user
}

func TestLockoutGuard_LocksAfterMaxFailures(t *testing.T) {
	guard, users, _ := newTestLockoutGuard(t)
	user := lockoutTestUser(t, users)

	for i := 1; i <= 4; i++ {
		result, err := guard.RecordFailure(user.Email, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, result.Locked, "attempt %d should not lock", i)
		assert.Equal(t, 5-i, result.RemainingAttempts)
	}

	result, err := guard.RecordFailure(user.Email, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, result.Locked)

	status, err := guard.CheckLock(user.ID)
	require.NoError(t, err)
	assert.True(t, status.Locked)
	assert.Greater(t, status.RetryAfterMinutes, 0)
	assert.LessOrEqual(t, status.RetryAfterMinutes, 15)
}

func TestLockoutGuard_UnknownIdentifierMutatesNothing(t *testing.T) {
	guard, users, _ := newTestLockoutGuard(t)
	user := lockoutTestUser(t, users)

	result, err := guard.RecordFailure("ghost@dentanet.edu", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.Locked)

	fresh, err := users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.LoginAttempts)
	assert.Nil(t, fresh.LockedUntil)
}

func TestLockoutGuard_SuccessResetsCounter(t *testing.T) {
	guard, users, _ := newTestLockoutGuard(t)
	user := lockoutTestUser(t, users)

	for i := 0; i < 3; i++ {
		_, err := guard.RecordFailure(user.Email, "10.0.0.1")
		require.NoError(t, err)
	}

	guard.RecordSuccess(user.ID, "10.0.0.1")

	fresh, err := users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.LoginAttempts)
	assert.Nil(t, fresh.LockedUntil)
	require.NotNil(t, fresh.LastLoginAt)
	assert.Equal(t, "10.0.0.1", fresh.LastLoginIP)

	// The next failure starts counting from zero again
	result, err := guard.RecordFailure(user.Email, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.Locked)
	assert.Equal(t, 4, result.RemainingAttempts)
}

func TestLockoutGuard_LockExpiresLazily(t *testing.T) {
	guard, users, clk := newTestLockoutGuard(t)
	user := lockoutTestUser(t, users)

	for i := 0; i < 5; i++ {
		_, err := guard.RecordFailure(user.Email, "10.0.0.1")
		require.NoError(t, err)
	}

	status, err := guard.CheckLock(user.ID)
	require.NoError(t, err)
	require.True(t, status.Locked)

	// Just before expiry the lock still holds
	clk.Advance(14 * time.Minute)
	status, err = guard.CheckLock(user.ID)
	require.NoError(t, err)
	assert.True(t, status.Locked)
	assert.Equal(t, 1, status.RetryAfterMinutes)

	// Past expiry the check clears attempts as a side effect
	clk.Advance(2 * time.Minute)
	status, err = guard.CheckLock(user.ID)
	require.NoError(t, err)
	assert.False(t, status.Locked)

	fresh, err := users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.LoginAttempts)
	assert.Nil(t, fresh.LockedUntil)
}

func TestLockoutGuard_CheckLockUnknownUser(t *testing.T) {
	guard, _, _ := newTestLockoutGuard(t)

	status, err := guard.CheckLock(uuid.New())
	require.NoError(t, err)
	assert.False(t, status.Locked)
}

func TestLockoutGuard_LockMinutes(t *testing.T) {
	guard, _, _ := newTestLockoutGuard(t)
	assert.Equal(t, 15, guard.LockMinutes())
}

// Simultaneous failures must each land on the counter. The increment is an
// expression-based row update, so interleaved goroutines can never read a
// stale count and write it back over each other's work.
func TestLockoutGuard_ConcurrentFailuresNeverSkip(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	users := repository.NewUserRepository(db)
	clk := newTestClock()
	guard := NewLockoutGuard(users, testSecurityConfig())
	guard.now = clk.Now
	user := lockoutTestUser(t, users)

	const attempts = 5
	results := make([]FailureResult, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := guard.RecordFailure(user.Email, "10.0.0.1")
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	fresh, err := users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, attempts, fresh.LoginAttempts, "every failure must be counted exactly once")
	assert.NotNil(t, fresh.LockedUntil, "reaching the threshold must lock the account")

	locked := 0
	for _, r := range results {
		if r.Locked {
			locked++
		}
	}
	assert.GreaterOrEqual(t, locked, 1, "whichever goroutine observed the threshold must report the lock")
}
