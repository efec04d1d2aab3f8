package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/service"
)

// respondError maps service errors to HTTP statuses. Lockout responses use
// 423 and carry the retry window; failed logins carry remaining attempts.
func respondError(c *gin.Context, err error) {
	var locked *service.LockedError
	if errors.As(err, &locked) {
		c.JSON(http.StatusLocked, model.ErrorResponse{
			Error:            err.Error(),
			Locked:           true,
			RemainingMinutes: locked.RetryAfterMinutes,
		})
		return
	}

	var creds *service.CredentialsError
	if errors.As(err, &creds) {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Error:             "Invalid credentials",
			RemainingAttempts: creds.RemainingAttempts,
		})
		return
	}

	var validation *service.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: validation.Message})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Invalid credentials"})
	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrRegNumberExists),
		errors.Is(err, service.ErrStaffIDExists):
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrOTPNotVerified):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrTooManyOTPRequests):
		c.JSON(http.StatusTooManyRequests, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"})
	}
}

// currentUserID reads the authenticated user ID set by the auth middleware
func currentUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// isStaff reports whether the caller's role is lecturer or admin
func isStaff(c *gin.Context) bool {
	role := c.GetString("role")
	return role == string(model.RoleLecturer) || role == string(model.RoleAdmin)
}
