package service

import (
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/config"
	"github.com/dentanet/api/internal/repository"
)

// LockoutGuard tracks failed authentication attempts per account and
// enforces a temporary lock after too many. It owns no I/O of its own; all
// state lives on the users row.
//
// State machine: Unlocked(n) -> failure -> Unlocked(n+1) until n reaches the
// threshold, which moves the account to Locked(until). Time elapsing past
// `until` or a successful login returns it to Unlocked(0).
type LockoutGuard struct {
	users        *repository.UserRepository
	maxAttempts  int
	lockDuration time.Duration
	now          func() time.Time
}

// LockStatus reports whether an account may attempt authentication
type LockStatus struct {
	Locked            bool
	RetryAfterMinutes int
}

// FailureResult reports the outcome of recording a failed attempt
type FailureResult struct {
	Locked            bool
	RemainingAttempts int
}

func NewLockoutGuard(users *repository.UserRepository, cfg config.SecurityConfig) *LockoutGuard {
	return &LockoutGuard{
		users:        users,
		maxAttempts:  cfg.LoginMaxAttempts,
		lockDuration: cfg.LoginLockDuration,
		now:          time.Now,
	}
}

// LockMinutes returns the configured lock duration in whole minutes,
// rounded up
func (g *LockoutGuard) LockMinutes() int {
	return int(math.Ceil(g.lockDuration.Minutes()))
}

// CheckLock decides whether an authentication attempt may proceed. An
// elapsed lock is cleared here as a side effect, so expiry works without any
// background job. Unknown accounts read as unlocked; existence is never
// revealed through this path.
func (g *LockoutGuard) CheckLock(userID uuid.UUID) (LockStatus, error) {
	user, err := g.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LockStatus{Locked: false}, nil
		}
		return LockStatus{}, err
	}

	if user.LockedUntil == nil {
		return LockStatus{Locked: false}, nil
	}

	now := g.now()
	if now.Before(*user.LockedUntil) {
		minutes := int(math.Ceil(user.LockedUntil.Sub(now).Minutes()))
		return LockStatus{Locked: true, RetryAfterMinutes: minutes}, nil
	}

	// Lock expired: reset attempts so the next failure starts from zero
	if err := g.users.ClearLockAndAttempts(user.ID); err != nil {
		return LockStatus{}, err
	}
	return LockStatus{Locked: false}, nil
}

// RecordFailure notes a failed attempt against whatever account the
// identifier resolves to. An identifier that matches nothing mutates nothing
// and reads as not locked, so attackers cannot probe for accounts. The
// counter increment is a single row-level update; concurrent failures
// serialize at the row and never skip values.
func (g *LockoutGuard) RecordFailure(identifier, clientIP string) (FailureResult, error) {
	user, err := g.users.FindByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FailureResult{Locked: false}, nil
		}
		return FailureResult{}, err
	}

	count, err := g.users.IncrementLoginAttempts(user.ID)
	if err != nil {
		return FailureResult{}, err
	}

	if count >= g.maxAttempts {
		until := g.now().Add(g.lockDuration)
		if err := g.users.SetLock(user.ID, until); err != nil {
			return FailureResult{}, err
		}
		log.Printf("🔒 Account locked: %s - IP: %s - Attempts: %d", user.Email, clientIP, count)
		return FailureResult{Locked: true}, nil
	}

	log.Printf("⚠️  Failed login: %s - IP: %s - Attempts: %d/%d", user.Email, clientIP, count, g.maxAttempts)
	return FailureResult{Locked: false, RemainingAttempts: g.maxAttempts - count}, nil
}

// RecordSuccess resets the failure state and stamps the login. Bookkeeping
// faults are logged and swallowed; they must never fail a login that already
// succeeded.
func (g *LockoutGuard) RecordSuccess(userID uuid.UUID, clientIP string) {
	if err := g.users.RecordLoginSuccess(userID, clientIP, g.now()); err != nil {
		log.Printf("⚠️  Failed to record successful login for %s: %v", userID, err)
	}
}
