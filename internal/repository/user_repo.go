package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dentanet/api/internal/model"
)

// UserRepository handles database operations for accounts and role rows
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// Create inserts a new user
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// CreateStudent inserts a student role row
func (r *UserRepository) CreateStudent(student *model.Student) error {
	return r.db.Create(student).Error
}

// CreateLecturer inserts a lecturer role row
func (r *UserRepository) CreateLecturer(lecturer *model.Lecturer) error {
	return r.db.Create(lecturer).Error
}

// CreateAdmin inserts an admin role row
func (r *UserRepository) CreateAdmin(admin *model.Admin) error {
	return r.db.Create(admin).Error
}

// FindByID finds a user by UUID
func (r *UserRepository) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifier resolves an email, student registration number, or staff
// ID to the account it belongs to. Registration numbers and staff IDs are
// stored uppercase.
func (r *UserRepository) FindByIdentifier(identifier string) (*model.User, error) {
	id := strings.TrimSpace(identifier)
	var user model.User
	err := r.db.
		Select("users.*").
		Joins("LEFT JOIN students ON students.user_id = users.id").
		Joins("LEFT JOIN lecturers ON lecturers.user_id = users.id").
		Where("users.email = ? OR students.registration_number = ? OR lecturers.staff_id = ?",
			strings.ToLower(id), strings.ToUpper(id), strings.ToUpper(id)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ========== Lockout guard primitives ==========

// IncrementLoginAttempts bumps the failed-attempt counter as a single
// row-level update so concurrent failures never under-count, and returns the
// counter after this increment.
func (r *UserRepository) IncrementLoginAttempts(userID uuid.UUID) (int, error) {
	err := r.db.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("login_attempts", gorm.Expr("login_attempts + 1")).Error
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Pluck("login_attempts", &count).Error
	return count, err
}

// SetLock locks the account until the given time
func (r *UserRepository) SetLock(userID uuid.UUID, until time.Time) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("locked_until", until).Error
}

// ClearLockAndAttempts resets the lockout state (lock expired or admin unlock)
func (r *UserRepository) ClearLockAndAttempts(userID uuid.UUID) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"login_attempts": 0,
			"locked_until":   nil,
		}).Error
}

// RecordLoginSuccess resets the lockout state and stamps the login time and IP
func (r *UserRepository) RecordLoginSuccess(userID uuid.UUID, ip string, at time.Time) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"login_attempts": 0,
			"locked_until":   nil,
			"last_login_at":  at,
			"last_login_ip":  ip,
		}).Error
}

// ========== Role rows ==========

// FindStudentByUserID loads the student role row
func (r *UserRepository) FindStudentByUserID(userID uuid.UUID) (*model.Student, error) {
	var student model.Student
	err := r.db.Where("user_id = ?", userID).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// FindLecturerByUserID loads the lecturer role row
func (r *UserRepository) FindLecturerByUserID(userID uuid.UUID) (*model.Lecturer, error) {
	var lecturer model.Lecturer
	err := r.db.Where("user_id = ?", userID).First(&lecturer).Error
	if err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// FindAdminByUserID loads the admin role row
func (r *UserRepository) FindAdminByUserID(userID uuid.UUID) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Where("user_id = ?", userID).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// RegistrationNumberExists checks for a duplicate student registration number
func (r *UserRepository) RegistrationNumberExists(regNumber string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Student{}).
		Where("registration_number = ?", strings.ToUpper(regNumber)).
		Count(&count).Error
	return count > 0, err
}

// StaffIDExists checks for a duplicate lecturer staff ID
func (r *UserRepository) StaffIDExists(staffID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Lecturer{}).
		Where("staff_id = ?", strings.ToUpper(staffID)).
		Count(&count).Error
	return count > 0, err
}

// ========== Directory operations ==========

// List returns all accounts, newest first
func (r *UserRepository) List() ([]model.User, error) {
	var users []model.User
	err := r.db.Order("created_at DESC").Find(&users).Error
	return users, err
}

// UpdateProfile updates the editable profile fields
func (r *UserRepository) UpdateProfile(userID uuid.UUID, req model.UpdateUserRequest) error {
	updates := map[string]interface{}{}
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.FirstName != "" || req.LastName != "" {
		var user model.User
		if err := r.db.Select("first_name", "last_name").Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		first, last := user.FirstName, user.LastName
		if req.FirstName != "" {
			first = req.FirstName
		}
		if req.LastName != "" {
			last = req.LastName
		}
		updates["full_name"] = strings.TrimSpace(first + " " + last)
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.ProfileImageURL != "" {
		updates["profile_image_url"] = req.ProfileImageURL
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}

// UpdatePassword replaces the stored bcrypt hash
func (r *UserRepository) UpdatePassword(userID uuid.UUID, passwordHash string) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

// Deactivate soft-disables an account (login refused, data retained)
func (r *UserRepository) Deactivate(userID uuid.UUID) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("is_active", false).Error
}

// ========== Devices ==========

// AddDevice adds or refreshes an FCM device token
func (r *UserRepository) AddDevice(userID uuid.UUID, token, deviceType string) error {
	device := model.UserDevice{
		UserID:       userID,
		FCMToken:     token,
		DeviceType:   deviceType,
		LastActiveAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "fcm_token"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_active_at": time.Now(),
			"device_type":    deviceType,
		}),
	}).Create(&device).Error
}

// GetUserDevices gets all devices for a user
func (r *UserRepository) GetUserDevices(userID uuid.UUID) ([]model.UserDevice, error) {
	var devices []model.UserDevice
	err := r.db.Where("user_id = ?", userID).Find(&devices).Error
	return devices, err
}

// RemoveDeviceByToken drops a device row whose FCM token is no longer valid
func (r *UserRepository) RemoveDeviceByToken(token string) error {
	return r.db.Where("fcm_token = ?", token).Delete(&model.UserDevice{}).Error
}
