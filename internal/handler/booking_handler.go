package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/service"
)

// BookingHandler handles lab machine reservations
type BookingHandler struct {
	bookings *service.BookingService
}

func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// ListMachines godoc
// @Summary List bookable lab machines
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.LabMachine
// @Router /bookings/machines [get]
func (h *BookingHandler) ListMachines(c *gin.Context) {
	machines, err := h.bookings.ListMachines()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// Create godoc
// @Summary Create a pending lab booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.CreateBookingRequest true "Booking details"
// @Success 201 {object} model.LabBooking
// @Failure 400 {object} model.ErrorResponse
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	booking, err := h.bookings.Create(currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// List godoc
// @Summary List bookings (own for students, all for staff)
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.BookingResponse
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	userID := currentUserID(c)
	if isStaff(c) {
		userID = uuid.Nil
	}

	bookings, err := h.bookings.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// Decide godoc
// @Summary Approve or reject a pending booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param body body model.UpdateBookingStatusRequest true "Decision"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /bookings/{id}/status [put]
func (h *BookingHandler) Decide(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	var req model.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.bookings.Decide(id, currentUserID(c), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Booking " + string(req.Status)})
}

// Cancel godoc
// @Summary Cancel the caller's own booking
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	if err := h.bookings.Cancel(id, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Booking cancelled"})
}
