package model

import (
	"time"

	"github.com/google/uuid"
)

// LabMachine is a bookable piece of lab equipment
type LabMachine struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MachineCode   string    `json:"machine_code" gorm:"uniqueIndex;not null;size:20"`
	LabNumber     string    `json:"lab_number" gorm:"size:20;not null"`
	IsOperational bool      `json:"is_operational" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at"`
}

// BookingStatus tracks the approval state of a lab booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// LabBooking reserves a lab machine for a time slot. Bookings start pending
// and are approved or rejected by a lecturer or admin.
type LabBooking struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	MachineID     uuid.UUID     `json:"machine_id" gorm:"type:uuid;not null;index"`
	BookingType   string        `json:"booking_type" gorm:"size:30;not null"`
	BookingDate   time.Time     `json:"booking_date" gorm:"not null"`
	StartTime     string        `json:"start_time" gorm:"size:5;not null"` // HH:MM
	EndTime       string        `json:"end_time" gorm:"size:5;not null"`   // HH:MM
	DurationHours float64       `json:"duration_hours" gorm:"not null"`
	Purpose       string        `json:"purpose" gorm:"size:500;default:''"`
	Status        BookingStatus `json:"status" gorm:"type:booking_status;default:'pending'"`
	ApprovedBy    *uuid.UUID    `json:"approved_by" gorm:"type:uuid"`
	ApprovedAt    *time.Time    `json:"approved_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	User    User       `json:"-" gorm:"foreignKey:UserID"`
	Machine LabMachine `json:"-" gorm:"foreignKey:MachineID"`
}

// BookingResponse joins a booking with the requester and machine summary
type BookingResponse struct {
	LabBooking
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	MachineCode string `json:"machine_code"`
	LabNumber   string `json:"lab_number"`
}
