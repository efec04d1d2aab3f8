package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
)

// PasswordResetService runs the three-step reset flow: request a code,
// verify it, then redeem it together with the password update. The reset
// window is short, so verification and redemption are separate steps; a
// code verified in time may be redeemed after its expiry has passed.
type PasswordResetService struct {
	users *repository.UserRepository
	otps  *OTPManager
}

func NewPasswordResetService(users *repository.UserRepository, otps *OTPManager) *PasswordResetService {
	return &PasswordResetService{users: users, otps: otps}
}

// Request issues a reset code when the email has an account. The response
// is identical either way; this endpoint never confirms that an address is
// registered.
func (s *PasswordResetService) Request(req model.RequestPasswordResetRequest) (*model.OTPSentResponse, error) {
	generic := &model.OTPSentResponse{
		Message:   "If the email exists, a reset code has been sent",
		Email:     req.Email,
		ExpiresIn: int(s.otps.TTL(model.OTPPurposePasswordReset).Seconds()),
	}

	email, err := ValidateEmail(req.Email)
	if err != nil {
		return generic, nil
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return generic, nil
		}
		return nil, err
	}
	if !user.IsActive {
		return generic, nil
	}

	// Rate-limit and delivery errors still surface; they carry no
	// existence signal since they occur for registered and pending
	// addresses alike
	if _, err := s.otps.Issue(email, user.FirstName, model.OTPPurposePasswordReset); err != nil {
		return nil, err
	}

	return generic, nil
}

// VerifyOTP confirms the code within its validity window and hands back the
// token ID the reset step must present.
func (s *PasswordResetService) VerifyOTP(req model.VerifyResetOTPRequest) (*model.VerifyResetOTPResponse, error) {
	email, err := ValidateEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidOTP
	}

	handle, err := s.otps.Verify(email, req.Code, model.OTPPurposePasswordReset)
	if err != nil {
		return nil, err
	}

	return &model.VerifyResetOTPResponse{
		Message: "Code verified",
		TokenID: handle,
	}, nil
}

// Reset spends the verified code and writes the new password hash in one
// transaction.
func (s *PasswordResetService) Reset(req model.ResetPasswordRequest) error {
	email, err := ValidateEmail(req.Email)
	if err != nil {
		return ErrInvalidOTP
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPNotVerified
		}
		return err
	}

	if err := ValidatePassword(req.NewPassword, email); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.otps.Redeem(req.TokenID, email, req.Code, model.OTPPurposePasswordReset, func(tx *gorm.DB) error {
		return s.users.WithTx(tx).UpdatePassword(user.ID, string(hashed))
	})
}
