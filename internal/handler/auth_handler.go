package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/service"
)

// AuthHandler handles login, token verification, and logout
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary Login with email, registration number, or staff ID
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body model.LoginRequest true "Login request"
// @Success 200 {object} model.LoginResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 423 {object} model.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	resp, err := h.authService.Login(req.Identifier, req.Password, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	resp.Message = "Login successful"
	c.JSON(http.StatusOK, resp)
}

// Verify godoc
// @Summary Verify the current session token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.VerifyTokenResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	resp, err := h.authService.VerifyToken(bearerToken(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Logout and revoke the current token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(bearerToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Logged out successfully"})
}

// Me godoc
// @Summary Get the current user's profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	resp, err := h.authService.GetProfile(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterDevice godoc
// @Summary Register a device for push notifications
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.RegisterDeviceRequest true "Device registration"
// @Success 200 {object} model.SuccessResponse
// @Router /auth/devices [post]
func (h *AuthHandler) RegisterDevice(c *gin.Context) {
	var req model.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.authService.RegisterDevice(currentUserID(c), req.FCMToken, req.DeviceType); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Device registered"})
}

// bearerToken extracts the raw token from the Authorization header. The
// middleware also stashes it under "token" for authenticated routes.
func bearerToken(c *gin.Context) string {
	if t := c.GetString("token"); t != "" {
		return t
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
