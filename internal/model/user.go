package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role defines what kind of portal account this is
type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
	RoleAdmin    Role = "admin"
)

// User represents a portal account. Role-specific attributes live in the
// Student / Lecturer / Admin rows keyed by UserID.
type User struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email           string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash    string    `json:"-" gorm:"size:255;not null"`
	FullName        string    `json:"full_name" gorm:"size:200;not null"`
	FirstName       string    `json:"first_name" gorm:"size:100;not null"`
	LastName        string    `json:"last_name" gorm:"size:100;not null"`
	Phone           string    `json:"phone" gorm:"size:20;default:''"`
	ProfileImageURL string    `json:"profile_image_url" gorm:"size:500;default:''"`
	Role            Role      `json:"role" gorm:"type:user_role;not null"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`

	// Login accounting (lockout guard state)
	LoginAttempts int        `json:"-" gorm:"not null;default:0"`
	LockedUntil   *time.Time `json:"-"` // NULL or in the past = unlocked
	LastLoginAt   *time.Time `json:"last_login_at"`
	LastLoginIP   string     `json:"-" gorm:"size:45;default:''"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsLockedAt reports whether the account is locked at the given instant
func (u *User) IsLockedAt(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Student holds student-specific registration data
type Student struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID             uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	BatchYear          int       `json:"batch_year" gorm:"not null"`
	RegistrationNumber string    `json:"registration_number" gorm:"uniqueIndex;not null;size:20"` // DENT/YYYY/XXX
	Department         string    `json:"department" gorm:"size:100;default:''"`
	AcademicStatus     string    `json:"academic_status" gorm:"size:20;default:'Active'"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// Lecturer holds lecturer-specific registration data
type Lecturer struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	StaffID        *string   `json:"staff_id" gorm:"uniqueIndex;size:10"` // LEC/XXX, optional
	Department     string    `json:"department" gorm:"size:100;not null"`
	Designation    string    `json:"designation" gorm:"size:50;default:'Lecturer'"`
	OfficeLocation string    `json:"office_location" gorm:"size:100;default:''"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// Admin holds administrator metadata. Admin accounts are provisioned by the
// seeder or another admin, never by self-registration.
type Admin struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	AdminLevel  string    `json:"admin_level" gorm:"size:20;default:'standard'"`
	Permissions string    `json:"permissions" gorm:"size:500;default:''"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// UserDevice stores an FCM push token for one of the user's devices
type UserDevice struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_fcm"`
	FCMToken     string    `json:"fcm_token" gorm:"size:500;not null;uniqueIndex:idx_user_fcm"`
	DeviceType   string    `json:"device_type" gorm:"size:20;not null"`
	LastActiveAt time.Time `json:"last_active_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// UserResponse is the safe version of User for API responses
type UserResponse struct {
	ID              uuid.UUID  `json:"user_id"`
	Email           string     `json:"email"`
	FullName        string     `json:"full_name"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Phone           string     `json:"phone,omitempty"`
	ProfileImageURL string     `json:"profile_image_url,omitempty"`
	Role            Role       `json:"role"`
	IsActive        bool       `json:"is_active"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`

	// Present when the role row was loaded
	Student  *Student  `json:"student,omitempty"`
	Lecturer *Lecturer `json:"lecturer,omitempty"`
	Admin    *Admin    `json:"admin,omitempty"`
}

// ToResponse converts User to safe UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Phone:           u.Phone,
		ProfileImageURL: u.ProfileImageURL,
		Role:            u.Role,
		IsActive:        u.IsActive,
		LastLoginAt:     u.LastLoginAt,
	}
}
