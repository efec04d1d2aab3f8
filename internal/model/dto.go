package model

import "github.com/google/uuid"

// ========== Auth DTOs ==========

type LoginRequest struct {
	// Email, registration number, or staff ID
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type VerifyTokenResponse struct {
	Valid bool          `json:"valid"`
	User  *UserResponse `json:"user,omitempty"`
}

// ========== Registration DTOs ==========

type SendRegistrationOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  Role   `json:"role" binding:"required,oneof=student lecturer"`
}

type VerifyAndRegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required,len=6"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Role     Role   `json:"role" binding:"required,oneof=student lecturer"`

	// Student fields
	BatchYear          int    `json:"batch_year"`
	RegistrationNumber string `json:"registration_number"`
	Department         string `json:"department"`
	AcademicStatus     string `json:"academic_status"`

	// Lecturer fields
	StaffID        string `json:"staff_id"`
	Designation    string `json:"designation"`
	OfficeLocation string `json:"office_location"`
}

type RegisterResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"user_id"`
}

// ========== OTP DTOs ==========

type OTPSentResponse struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	ExpiresIn int    `json:"expires_in"` // seconds until code expires
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyResetOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"otp_code" binding:"required,len=6"`
}

type VerifyResetOTPResponse struct {
	Message string    `json:"message"`
	TokenID uuid.UUID `json:"token_id"` // redemption handle for /reset
}

type ResetPasswordRequest struct {
	Email       string    `json:"email" binding:"required,email"`
	Code        string    `json:"otp_code" binding:"required,len=6"`
	TokenID     uuid.UUID `json:"token_id" binding:"required"`
	NewPassword string    `json:"new_password" binding:"required"`
}

// ========== User DTOs ==========

type UpdateUserRequest struct {
	FirstName       string `json:"first_name" binding:"omitempty,max=100"`
	LastName        string `json:"last_name" binding:"omitempty,max=100"`
	Phone           string `json:"phone" binding:"omitempty,max=20"`
	ProfileImageURL string `json:"profile_image_url" binding:"omitempty,max=500"`
}

type RegisterDeviceRequest struct {
	FCMToken   string `json:"fcm_token" binding:"required"`
	DeviceType string `json:"device_type" binding:"required"`
}

// ========== Booking DTOs ==========

type CreateBookingRequest struct {
	MachineID   uuid.UUID `json:"machine_id" binding:"required"`
	BookingType string    `json:"booking_type" binding:"required,max=30"`
	BookingDate string    `json:"booking_date" binding:"required"` // YYYY-MM-DD
	StartTime   string    `json:"start_time" binding:"required"`   // HH:MM
	EndTime     string    `json:"end_time" binding:"required"`     // HH:MM
	Purpose     string    `json:"purpose" binding:"omitempty,max=500"`
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required,oneof=approved rejected"`
}

// ========== Exam & submission DTOs ==========

type CreateExamRequest struct {
	Title           string `json:"title" binding:"required,max=200"`
	CourseCode      string `json:"course_code" binding:"required,max=20"`
	ExamDate        string `json:"exam_date" binding:"required"` // RFC 3339
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1"`
}

// ========== Evaluation DTOs ==========

type AIEvaluationRequest struct {
	SubmissionID          uuid.UUID `json:"submission_id" binding:"required"`
	FinalGrade            string    `json:"final_grade" binding:"required,max=5"`
	AIComment             string    `json:"ai_comment" binding:"omitempty,max=2000"`
	SmoothOutlineStatus   string    `json:"smooth_outline_status" binding:"required,max=20"`
	FlatFloorStatus       string    `json:"flat_floor_status" binding:"required,max=20"`
	DepthStatus           string    `json:"depth_status" binding:"required,max=20"`
	UndercutStatus        string    `json:"undercut_status" binding:"required,max=20"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
}

type LecturerEvaluationRequest struct {
	SubmissionID  uuid.UUID `json:"submission_id" binding:"required"`
	LecturerGrade string    `json:"lecturer_grade" binding:"required,max=5"`
	Feedback      string    `json:"feedback" binding:"omitempty,max=2000"`
	OverrideAI    bool      `json:"override_ai"`
}

// ========== Notification DTOs ==========

type CreateNotificationRequest struct {
	UserID  uuid.UUID `json:"user_id" binding:"required"`
	Type    string    `json:"type" binding:"required,max=30"`
	Title   string    `json:"title" binding:"required,max=200"`
	Message string    `json:"message" binding:"required,max=1000"`
}

// ========== Generic responses ==========

type SuccessResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`

	// Lockout details, present on 423 responses
	Locked           bool `json:"locked,omitempty"`
	RemainingMinutes int  `json:"remaining_minutes,omitempty"`
	// Present on failed login while attempts remain
	RemainingAttempts *int `json:"remaining_attempts,omitempty"`
}
