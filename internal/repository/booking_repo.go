package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
)

// BookingRepository handles database operations for lab machines and bookings
type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ListMachines returns all lab machines
func (r *BookingRepository) ListMachines() ([]model.LabMachine, error) {
	var machines []model.LabMachine
	err := r.db.Order("machine_code").Find(&machines).Error
	return machines, err
}

// FindMachineByID finds a machine by UUID
func (r *BookingRepository) FindMachineByID(id uuid.UUID) (*model.LabMachine, error) {
	var machine model.LabMachine
	err := r.db.Where("id = ?", id).First(&machine).Error
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

// CreateMachine inserts a lab machine (seeder / admin)
func (r *BookingRepository) CreateMachine(machine *model.LabMachine) error {
	return r.db.Create(machine).Error
}

// Create inserts a new booking
func (r *BookingRepository) Create(booking *model.LabBooking) error {
	return r.db.Create(booking).Error
}

// FindByID finds a booking by UUID
func (r *BookingRepository) FindByID(id uuid.UUID) (*model.LabBooking, error) {
	var booking model.LabBooking
	err := r.db.Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// List returns bookings joined with requester and machine info. A zero
// userID returns every booking (staff view); otherwise only the user's own.
func (r *BookingRepository) List(userID uuid.UUID) ([]model.BookingResponse, error) {
	q := r.db.Model(&model.LabBooking{}).
		Select("lab_bookings.*, users.first_name, users.last_name, users.email, lab_machines.machine_code, lab_machines.lab_number").
		Joins("JOIN users ON users.id = lab_bookings.user_id").
		Joins("JOIN lab_machines ON lab_machines.id = lab_bookings.machine_id")

	if userID != uuid.Nil {
		q = q.Where("lab_bookings.user_id = ?", userID)
	}

	var bookings []model.BookingResponse
	err := q.Order("lab_bookings.booking_date DESC, lab_bookings.start_time DESC").
		Scan(&bookings).Error
	return bookings, err
}

// UpdateStatus records an approval decision
func (r *BookingRepository) UpdateStatus(id uuid.UUID, status model.BookingStatus, approvedBy uuid.UUID, at time.Time) error {
	return r.db.Model(&model.LabBooking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"approved_by": approvedBy,
			"approved_at": at,
		}).Error
}

// Cancel marks a booking cancelled
func (r *BookingRepository) Cancel(id uuid.UUID) error {
	return r.db.Model(&model.LabBooking{}).
		Where("id = ?", id).
		Update("status", model.BookingStatusCancelled).Error
}
