package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/service"
)

// EvaluationHandler handles AI and lecturer grading endpoints
type EvaluationHandler struct {
	evaluations *service.EvaluationService
}

func NewEvaluationHandler(evaluations *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// RecordAI godoc
// @Summary Record an AI evaluation for a submission
// @Tags Evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.AIEvaluationRequest true "AI evaluation"
// @Success 201 {object} model.AIEvaluation
// @Failure 404 {object} model.ErrorResponse
// @Router /evaluations/ai [post]
func (h *EvaluationHandler) RecordAI(c *gin.Context) {
	var req model.AIEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	eval, err := h.evaluations.RecordAI(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, eval)
}

// RecordLecturer godoc
// @Summary Record a lecturer evaluation (final grade)
// @Tags Evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.LecturerEvaluationRequest true "Lecturer evaluation"
// @Success 201 {object} model.LecturerEvaluation
// @Failure 404 {object} model.ErrorResponse
// @Router /evaluations/lecturer [post]
func (h *EvaluationHandler) RecordLecturer(c *gin.Context) {
	var req model.LecturerEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	eval, err := h.evaluations.RecordLecturer(currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, eval)
}

// Detail godoc
// @Summary Get both evaluations for a submission
// @Tags Evaluations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} model.EvaluationDetail
// @Failure 403 {object} model.ErrorResponse
// @Router /submissions/{id}/evaluations [get]
func (h *EvaluationHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid submission ID"})
		return
	}

	detail, err := h.evaluations.Detail(id, currentUserID(c), isStaff(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
