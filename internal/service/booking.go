package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
)

// BookingService manages lab machine reservations. Students create pending
// bookings; lecturers and admins decide them; the requester is notified of
// the outcome.
type BookingService struct {
	bookings *repository.BookingRepository
	notify   *NotificationService
	now      func() time.Time
}

func NewBookingService(bookings *repository.BookingRepository, notify *NotificationService) *BookingService {
	return &BookingService{
		bookings: bookings,
		notify:   notify,
		now:      time.Now,
	}
}

// ListMachines returns all bookable lab machines
func (s *BookingService) ListMachines() ([]model.LabMachine, error) {
	return s.bookings.ListMachines()
}

// Create validates slot times and stores a pending booking
func (s *BookingService) Create(userID uuid.UUID, req model.CreateBookingRequest) (*model.LabBooking, error) {
	machine, err := s.bookings.FindMachineByID(req.MachineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !machine.IsOperational {
		return nil, invalid("machine %s is not operational", machine.MachineCode)
	}

	date, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		return nil, invalid("booking date must be YYYY-MM-DD")
	}

	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, invalid("start time must be HH:MM")
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, invalid("end time must be HH:MM")
	}
	if !end.After(start) {
		return nil, invalid("end time must be after start time")
	}

	booking := &model.LabBooking{
		ID:            uuid.New(),
		UserID:        userID,
		MachineID:     req.MachineID,
		BookingType:   req.BookingType,
		BookingDate:   date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		DurationHours: end.Sub(start).Hours(),
		Purpose:       req.Purpose,
		Status:        model.BookingStatusPending,
	}

	if err := s.bookings.Create(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// List returns bookings for one user, or all bookings when userID is
// uuid.Nil (staff view).
func (s *BookingService) List(userID uuid.UUID) ([]model.BookingResponse, error) {
	return s.bookings.List(userID)
}

// Decide approves or rejects a pending booking and notifies the requester
func (s *BookingService) Decide(bookingID, deciderID uuid.UUID, status model.BookingStatus) error {
	if status != model.BookingStatusApproved && status != model.BookingStatusRejected {
		return invalid("status must be approved or rejected")
	}

	booking, err := s.bookings.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if booking.Status != model.BookingStatusPending {
		return invalid("booking has already been %s", booking.Status)
	}

	if err := s.bookings.UpdateStatus(bookingID, status, deciderID, s.now()); err != nil {
		return err
	}

	title := "Lab booking approved"
	if status == model.BookingStatusRejected {
		title = "Lab booking rejected"
	}
	msg := fmt.Sprintf("Your booking for %s %s-%s has been %s",
		booking.BookingDate.Format("2006-01-02"), booking.StartTime, booking.EndTime, status)
	// The decision stands even if notification delivery fails
	if err := s.notify.Notify(booking.UserID, "booking", title, msg); err != nil {
		log.Printf("⚠️  Failed to notify %s of booking decision: %v", booking.UserID, err)
	}
	return nil
}

// Cancel lets the requester withdraw their own pending booking
func (s *BookingService) Cancel(bookingID, userID uuid.UUID) error {
	booking, err := s.bookings.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if booking.UserID != userID {
		return ErrAccessDenied
	}
	if booking.Status != model.BookingStatusPending && booking.Status != model.BookingStatusApproved {
		return invalid("only pending or approved bookings can be cancelled")
	}
	return s.bookings.Cancel(bookingID)
}
