package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
	"github.com/dentanet/api/pkg/auth"
)

// AuthService handles login, token verification, and logout. The lockout
// guard runs before any password comparison, so a locked account rejects
// even the correct password.
type AuthService struct {
	users      *repository.UserRepository
	lockout    *LockoutGuard
	jwtManager *auth.JWTManager
	rdb        *redis.Client
}

func NewAuthService(users *repository.UserRepository, lockout *LockoutGuard, jwtManager *auth.JWTManager, rdb *redis.Client) *AuthService {
	return &AuthService{
		users:      users,
		lockout:    lockout,
		jwtManager: jwtManager,
		rdb:        rdb,
	}
}

// Login authenticates by email, registration number, or staff ID. A wrong
// password counts against the lockout threshold; an unknown identifier
// mutates nothing and returns the same generic error.
func (s *AuthService) Login(identifier, password, clientIP string) (*model.LoginResponse, error) {
	user, err := s.users.FindByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &CredentialsError{}
		}
		return nil, err
	}

	status, err := s.lockout.CheckLock(user.ID)
	if err != nil {
		return nil, err
	}
	if status.Locked {
		return nil, &LockedError{RetryAfterMinutes: status.RetryAfterMinutes}
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		result, recErr := s.lockout.RecordFailure(identifier, clientIP)
		if recErr != nil {
			return nil, recErr
		}
		if result.Locked {
			return nil, &LockedError{RetryAfterMinutes: s.lockout.LockMinutes()}
		}
		remaining := result.RemainingAttempts
		return nil, &CredentialsError{RemainingAttempts: &remaining}
	}

	s.lockout.RecordSuccess(user.ID, clientIP)

	token, err := s.jwtManager.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	resp, err := s.buildUserResponse(user)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token: token,
		User:  *resp,
	}, nil
}

// VerifyToken revalidates a bearer token and returns the current account
// state, so clients can restore a session after a restart.
func (s *AuthService) VerifyToken(tokenString string) (*model.VerifyTokenResponse, error) {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if s.isBlacklisted(tokenString) {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	resp, err := s.buildUserResponse(user)
	if err != nil {
		return nil, err
	}

	return &model.VerifyTokenResponse{Valid: true, User: resp}, nil
}

// Logout blacklists the token in redis until its natural expiry
func (s *AuthService) Logout(tokenString string) error {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		// Already invalid, nothing to revoke
		return nil
	}

	expiresIn := time.Until(claims.ExpiresAt.Time)
	if expiresIn <= 0 {
		return nil
	}

	if s.rdb == nil {
		return nil
	}
	return s.rdb.Set(context.Background(), "blacklist:"+tokenString, "revoked", expiresIn).Err()
}

// GetProfile returns the account plus its role-specific details
func (s *AuthService) GetProfile(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.buildUserResponse(user)
}

// RegisterDevice stores an FCM token for push delivery
func (s *AuthService) RegisterDevice(userID uuid.UUID, fcmToken, deviceType string) error {
	return s.users.AddDevice(userID, fcmToken, deviceType)
}

func (s *AuthService) isBlacklisted(tokenString string) bool {
	if s.rdb == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	exists, err := s.rdb.Exists(ctx, "blacklist:"+tokenString).Result()
	return err == nil && exists > 0
}

func (s *AuthService) buildUserResponse(user *model.User) (*model.UserResponse, error) {
	resp := user.ToResponse()

	switch user.Role {
	case model.RoleStudent:
		student, err := s.users.FindStudentByUserID(user.ID)
		if err == nil {
			resp.Student = student
		}
	case model.RoleLecturer:
		lecturer, err := s.users.FindLecturerByUserID(user.ID)
		if err == nil {
			resp.Lecturer = lecturer
		}
	case model.RoleAdmin:
		admin, err := s.users.FindAdminByUserID(user.ID)
		if err == nil {
			resp.Admin = admin
		}
	}
	return &resp, nil
}
