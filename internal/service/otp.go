package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/config"
	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
)

const otpLength = 6

// Mailer delivers OTP codes. The manager never formats message bodies.
type Mailer interface {
	SendOTP(toEmail, name, code string, expiryMinutes int) error
	SendPasswordReset(toEmail, name, code string, expiryMinutes int) error
}

// RateLimiter throttles OTP issuance per owner. A nil limiter allows
// everything (the repository fallback still applies).
type RateLimiter interface {
	Allow(key string) bool
}

// OTPManager issues, verifies, and redeems single-use time-boxed codes
// scoped to an email and purpose. Codes live in the otp_codes table, so
// pending registrations survive restarts and are shared across instances.
type OTPManager struct {
	db      *gorm.DB
	otps    *repository.OTPRepository
	mailer  Mailer
	limiter RateLimiter
	cfg     config.SecurityConfig
	now     func() time.Time
}

func NewOTPManager(db *gorm.DB, otps *repository.OTPRepository, mailer Mailer, limiter RateLimiter, cfg config.SecurityConfig) *OTPManager {
	return &OTPManager{
		db:      db,
		otps:    otps,
		mailer:  mailer,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
	}
}

// TTL returns the validity window for a purpose
func (m *OTPManager) TTL(purpose model.OTPPurpose) time.Duration {
	if purpose == model.OTPPurposePasswordReset {
		return m.cfg.OTPResetTTL
	}
	return m.cfg.OTPRegistrationTTL
}

// Issue invalidates any pending code for (owner, purpose), stores a fresh
// 6-digit code, and emails it. Invalidate-and-insert runs in one
// transaction, so there is never a window with two live codes. With strict
// delivery the email is sent synchronously and the row is rolled back on
// failure; otherwise delivery happens in the background and failures are
// only logged.
func (m *OTPManager) Issue(email, name string, purpose model.OTPPurpose) (*model.OTPCode, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if !m.allowIssue(email, purpose) {
		return nil, ErrTooManyOTPRequests
	}

	code, err := generateOTPCode(otpLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	otp := &model.OTPCode{
		ID:        uuid.New(),
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: m.now().Add(m.TTL(purpose)),
		CreatedAt: m.now(),
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		otps := m.otps.WithTx(tx)
		if err := otps.InvalidatePending(email, purpose, m.now()); err != nil {
			return err
		}
		return otps.Create(otp)
	})
	if err != nil {
		return nil, err
	}

	if m.cfg.OTPStrictDelivery {
		if err := m.deliver(otp, name); err != nil {
			// Remove the dead code so a retry is not blocked by supersession
			if delErr := m.otps.Delete(otp.ID); delErr != nil {
				log.Printf("⚠️  Failed to roll back undelivered OTP %s: %v", otp.ID, delErr)
			}
			log.Printf("❌ OTP delivery failed for %s (%s): %v", email, purpose, err)
			return nil, ErrOTPDeliveryFailed
		}
	} else {
		go func() {
			if err := m.deliver(otp, name); err != nil {
				log.Printf("❌ OTP delivery failed for %s (%s): %v", email, purpose, err)
			}
		}()
	}

	return otp, nil
}

// Verify checks a supplied code against the live record for (owner,
// purpose). Wrong code, expired code, redeemed code, and no code at all are
// indistinguishable: all return ErrInvalidOTP. A match stamps verified_at
// and returns the record ID, which redemption must present as its handle.
func (m *OTPManager) Verify(email, code string, purpose model.OTPPurpose) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)

	otp, err := m.otps.FindActive(email, code, purpose, m.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrInvalidOTP
		}
		return uuid.Nil, err
	}

	if err := m.otps.MarkVerified(otp.ID, m.now()); err != nil {
		return uuid.Nil, err
	}
	return otp.ID, nil
}

// Redeem consumes a previously verified code and runs the caller's account
// mutation in the same transaction, so a crash can never leave the code
// spent without the mutation (or vice versa). The original expiry is not
// re-checked: verification already happened inside the validity window.
// Redeeming an unverified or already-used handle fails with
// ErrOTPNotVerified.
func (m *OTPManager) Redeem(handle uuid.UUID, email, code string, purpose model.OTPPurpose, mutate func(tx *gorm.DB) error) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)

	return m.db.Transaction(func(tx *gorm.DB) error {
		otps := m.otps.WithTx(tx)

		otp, err := otps.FindVerified(handle, email, code, purpose)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOTPNotVerified
			}
			return err
		}

		if err := otps.MarkUsed(otp.ID, m.now()); err != nil {
			return err
		}

		if mutate != nil {
			return mutate(tx)
		}
		return nil
	})
}

func (m *OTPManager) allowIssue(email string, purpose model.OTPPurpose) bool {
	if m.limiter != nil {
		return m.limiter.Allow(string(purpose) + ":" + email)
	}
	// Repository fallback when redis is not wired (tests, degraded mode)
	count, err := m.otps.CountRecent(email, purpose, m.now().Add(-m.cfg.OTPRateWindow))
	if err != nil {
		log.Printf("⚠️  OTP rate-limit count failed for %s: %v", email, err)
		return true
	}
	return count < int64(m.cfg.OTPRateLimit)
}

func (m *OTPManager) deliver(otp *model.OTPCode, name string) error {
	minutes := int(m.TTL(otp.Purpose).Minutes())
	if otp.Purpose == model.OTPPurposePasswordReset {
		return m.mailer.SendPasswordReset(otp.Email, name, otp.Code, minutes)
	}
	return m.mailer.SendOTP(otp.Email, name, otp.Code, minutes)
}

// generateOTPCode draws a uniformly random fixed-width numeric code. Built
// digit by digit so "007123" stays a six-character string; codes are stored
// and compared as text, never as integers.
func generateOTPCode(length int) (string, error) {
	code := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code += fmt.Sprintf("%d", n.Int64())
	}
	return code, nil
}
