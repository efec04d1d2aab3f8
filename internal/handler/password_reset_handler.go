package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/service"
)

// PasswordResetHandler handles the three-step reset flow
type PasswordResetHandler struct {
	reset *service.PasswordResetService
}

func NewPasswordResetHandler(reset *service.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{reset: reset}
}

// Request godoc
// @Summary Request a password reset code
// @Tags PasswordReset
// @Accept json
// @Produce json
// @Param body body model.RequestPasswordResetRequest true "Reset request"
// @Success 200 {object} model.OTPSentResponse
// @Failure 429 {object} model.ErrorResponse
// @Router /password-reset/request [post]
func (h *PasswordResetHandler) Request(c *gin.Context) {
	var req model.RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	resp, err := h.reset.Request(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyOTP godoc
// @Summary Verify a reset code and receive a redemption token
// @Tags PasswordReset
// @Accept json
// @Produce json
// @Param body body model.VerifyResetOTPRequest true "Verify request"
// @Success 200 {object} model.VerifyResetOTPResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /password-reset/verify-otp [post]
func (h *PasswordResetHandler) VerifyOTP(c *gin.Context) {
	var req model.VerifyResetOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	resp, err := h.reset.VerifyOTP(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reset godoc
// @Summary Set a new password using a verified code
// @Tags PasswordReset
// @Accept json
// @Produce json
// @Param body body model.ResetPasswordRequest true "Reset details"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /password-reset/reset [post]
func (h *PasswordResetHandler) Reset(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.reset.Reset(req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Password has been reset"})
}
