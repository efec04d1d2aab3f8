package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/service"
)

// SubmissionHandler handles exams and exam work uploads
type SubmissionHandler struct {
	submissions *service.SubmissionService
}

func NewSubmissionHandler(submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// CreateExam godoc
// @Summary Schedule a practical exam
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.CreateExamRequest true "Exam details"
// @Success 201 {object} model.Exam
// @Router /exams [post]
func (h *SubmissionHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	exam, err := h.submissions.CreateExam(currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exam)
}

// ListExams godoc
// @Summary List scheduled exams
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Exam
// @Router /exams [get]
func (h *SubmissionHandler) ListExams(c *gin.Context) {
	exams, err := h.submissions.ListExams()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

// Submit godoc
// @Summary Upload exam work (multipart form, field "file")
// @Tags Exams
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param file formData file true "Submission file (JPG, PNG, or PDF)"
// @Success 201 {object} model.ExamSubmission
// @Failure 400 {object} model.ErrorResponse
// @Router /exams/{id}/submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid exam ID"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "File is required for exam submission"})
		return
	}
	defer file.Close()

	sub, err := h.submissions.Submit(c.Request.Context(), currentUserID(c), examID, file, header)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// ListSubmissions godoc
// @Summary List submissions (own for students, all for staff)
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.ExamSubmission
// @Router /submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	studentID := currentUserID(c)
	if isStaff(c) {
		studentID = uuid.Nil
	}

	subs, err := h.submissions.ListSubmissions(studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// GetSubmission godoc
// @Summary Get one submission
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} model.ExamSubmission
// @Failure 403 {object} model.ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid submission ID"})
		return
	}

	sub, err := h.submissions.GetSubmission(c.Request.Context(), id, currentUserID(c), isStaff(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
