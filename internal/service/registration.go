package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
)

// RegistrationService implements OTP-gated signup for students and
// lecturers. No user row exists until the code is redeemed; a pending
// registration is represented solely by its otp_codes row keyed by email.
type RegistrationService struct {
	users *repository.UserRepository
	otps  *OTPManager
}

func NewRegistrationService(users *repository.UserRepository, otps *OTPManager) *RegistrationService {
	return &RegistrationService{users: users, otps: otps}
}

// SendOTP validates the address, rejects emails that already have an
// account, and issues a registration code.
func (s *RegistrationService) SendOTP(req model.SendRegistrationOTPRequest) (*model.OTPSentResponse, error) {
	email, err := ValidateEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if req.Role != model.RoleStudent && req.Role != model.RoleLecturer {
		return nil, invalid("role must be student or lecturer")
	}

	if _, err := s.users.FindByEmail(email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.otps.Issue(email, "", model.OTPPurposeRegistration); err != nil {
		return nil, err
	}

	return &model.OTPSentResponse{
		Message:   "Verification code sent to your email",
		Email:     email,
		ExpiresIn: int(s.otps.TTL(model.OTPPurposeRegistration).Seconds()),
	}, nil
}

// VerifyAndRegister checks the OTP and, inside the same transaction that
// spends it, creates the user plus its role row. A duplicate registration
// number or staff ID rolls everything back, so the verified code remains
// redeemable for a corrected retry.
func (s *RegistrationService) VerifyAndRegister(req model.VerifyAndRegisterRequest) (*model.RegisterResponse, error) {
	email, err := ValidateEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(req.Password, email); err != nil {
		return nil, err
	}
	fullName, err := ValidateFullName(req.FullName)
	if err != nil {
		return nil, err
	}

	var student *model.Student
	var lecturer *model.Lecturer

	switch req.Role {
	case model.RoleStudent:
		regNumber, err := ValidateRegistrationNumber(req.RegistrationNumber)
		if err != nil {
			return nil, err
		}
		if err := ValidateBatchYear(req.BatchYear); err != nil {
			return nil, err
		}
		department, err := ValidateDepartment(req.Department, false)
		if err != nil {
			return nil, err
		}
		status, err := ValidateAcademicStatus(req.AcademicStatus)
		if err != nil {
			return nil, err
		}
		exists, err := s.users.RegistrationNumberExists(regNumber)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrRegNumberExists
		}
		student = &model.Student{
			ID:                 uuid.New(),
			RegistrationNumber: regNumber,
			BatchYear:          req.BatchYear,
			Department:         department,
			AcademicStatus:     status,
		}

	case model.RoleLecturer:
		staffID, err := ValidateStaffID(req.StaffID)
		if err != nil {
			return nil, err
		}
		department, err := ValidateDepartment(req.Department, true)
		if err != nil {
			return nil, err
		}
		designation, err := ValidateDesignation(req.Designation)
		if err != nil {
			return nil, err
		}
		if staffID != "" {
			exists, err := s.users.StaffIDExists(staffID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrStaffIDExists
			}
		}
		lecturer = &model.Lecturer{
			ID:             uuid.New(),
			Department:     department,
			Designation:    designation,
			OfficeLocation: req.OfficeLocation,
		}
		if staffID != "" {
			lecturer.StaffID = &staffID
		}

	default:
		return nil, invalid("role must be student or lecturer")
	}

	if _, err := s.users.FindByEmail(email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	handle, err := s.otps.Verify(email, req.OTP, model.OTPPurposeRegistration)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	firstName, lastName := splitFullName(fullName)
	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     fullName,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         req.Role,
		IsActive:     true,
	}

	err = s.otps.Redeem(handle, email, req.OTP, model.OTPPurposeRegistration, func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		if err := users.Create(user); err != nil {
			return err
		}
		switch req.Role {
		case model.RoleStudent:
			student.UserID = user.ID
			return users.CreateStudent(student)
		case model.RoleLecturer:
			lecturer.UserID = user.ID
			return users.CreateLecturer(lecturer)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.RegisterResponse{
		Message: "Registration successful",
		UserID:  user.ID,
	}, nil
}

func splitFullName(fullName string) (first, last string) {
	parts := strings.SplitN(fullName, " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}
