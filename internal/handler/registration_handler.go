package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/service"
)

// RegistrationHandler handles OTP-gated signup
type RegistrationHandler struct {
	registration *service.RegistrationService
}

func NewRegistrationHandler(registration *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// SendOTP godoc
// @Summary Send a registration verification code
// @Tags Registration
// @Accept json
// @Produce json
// @Param body body model.SendRegistrationOTPRequest true "OTP request"
// @Success 200 {object} model.OTPSentResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 429 {object} model.ErrorResponse
// @Router /registration/send-otp [post]
func (h *RegistrationHandler) SendOTP(c *gin.Context) {
	var req model.SendRegistrationOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	resp, err := h.registration.SendOTP(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyAndRegister godoc
// @Summary Verify the OTP and create the account
// @Tags Registration
// @Accept json
// @Produce json
// @Param body body model.VerifyAndRegisterRequest true "Registration details"
// @Success 201 {object} model.RegisterResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /registration/verify-and-register [post]
func (h *RegistrationHandler) VerifyAndRegister(c *gin.Context) {
	var req model.VerifyAndRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	resp, err := h.registration.VerifyAndRegister(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
