package service

import (
	"errors"
	"fmt"
)

// Expected failures are returned as values and mapped to HTTP statuses by
// the handlers. Anything else bubbling out of a service is a persistence or
// infrastructure fault.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrAccountLocked      = errors.New("account is locked")
	ErrEmailExists        = errors.New("user with this email already exists")
	ErrRegNumberExists    = errors.New("registration number already exists")
	ErrStaffIDExists      = errors.New("staff ID already exists")

	// Wrong, expired, already-used, and never-issued codes are deliberately
	// indistinguishable to the caller.
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrOTPNotVerified     = errors.New("OTP not verified or already used")
	ErrTooManyOTPRequests = errors.New("too many OTP requests")
	ErrOTPDeliveryFailed  = errors.New("failed to send OTP email")

	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")

	// Returned when object storage was not reachable at startup and a file
	// operation is requested anyway.
	ErrStorageUnavailable = errors.New("file storage is unavailable")
)

// LockedError carries how long the caller has to wait. It matches
// ErrAccountLocked under errors.Is.
type LockedError struct {
	RetryAfterMinutes int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account is locked. Try again in %d minute(s)", e.RetryAfterMinutes)
}

func (e *LockedError) Is(target error) bool {
	return target == ErrAccountLocked
}

// CredentialsError reports a failed password attempt along with how many
// tries remain before the account locks. Matches ErrInvalidCredentials
// under errors.Is. RemainingAttempts is nil when the identifier itself was
// unknown, so responses stay identical for real and invented accounts.
type CredentialsError struct {
	RemainingAttempts *int
}

func (e *CredentialsError) Error() string {
	return ErrInvalidCredentials.Error()
}

func (e *CredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// ValidationError is a field-validation failure with a user-facing message
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
