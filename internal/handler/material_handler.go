package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/service"
)

// MaterialHandler handles study material uploads and listing
type MaterialHandler struct {
	materials *service.MaterialService
}

func NewMaterialHandler(materials *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{materials: materials}
}

// Upload godoc
// @Summary Upload a study material (multipart form)
// @Tags Materials
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param type formData string true "Material type (notes, slides, video, reference)"
// @Param course_code formData string false "Course code"
// @Param file formData file true "Material file"
// @Success 201 {object} model.StudyMaterial
// @Failure 400 {object} model.ErrorResponse
// @Router /materials [post]
func (h *MaterialHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "File is required"})
		return
	}
	defer file.Close()

	material, err := h.materials.Upload(
		c.Request.Context(),
		currentUserID(c),
		c.PostForm("title"),
		c.PostForm("course_code"),
		c.PostForm("type"),
		file,
		header,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, material)
}

// List godoc
// @Summary List study materials
// @Tags Materials
// @Produce json
// @Security BearerAuth
// @Param course_code query string false "Filter by course code"
// @Param type query string false "Filter by type"
// @Success 200 {array} model.StudyMaterial
// @Router /materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	materials, err := h.materials.List(c.Query("course_code"), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}
