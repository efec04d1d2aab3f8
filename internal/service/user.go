package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
)

// UserService covers account administration: listing, profile updates, and
// deactivation. Deactivation is soft; the row stays for audit history.
type UserService struct {
	users *repository.UserRepository
}

func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// List returns all accounts (admin view)
func (s *UserService) List() ([]model.UserResponse, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, err
	}
	result := make([]model.UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, u.ToResponse())
	}
	return result, nil
}

// Get returns one account with its role row attached
func (s *UserService) Get(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resp := user.ToResponse()
	switch user.Role {
	case model.RoleStudent:
		if student, err := s.users.FindStudentByUserID(user.ID); err == nil {
			resp.Student = student
		}
	case model.RoleLecturer:
		if lecturer, err := s.users.FindLecturerByUserID(user.ID); err == nil {
			resp.Lecturer = lecturer
		}
	case model.RoleAdmin:
		if admin, err := s.users.FindAdminByUserID(user.ID); err == nil {
			resp.Admin = admin
		}
	}
	return &resp, nil
}

// UpdateProfile applies the caller's own profile changes
func (s *UserService) UpdateProfile(userID uuid.UUID, req model.UpdateUserRequest) (*model.UserResponse, error) {
	if err := s.users.UpdateProfile(userID, req); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// Deactivate disables an account. Active sessions die on their next token
// verification.
func (s *UserService) Deactivate(userID uuid.UUID) error {
	if _, err := s.users.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.users.Deactivate(userID)
}
