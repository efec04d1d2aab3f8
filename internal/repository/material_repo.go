package repository

import (
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
)

// MaterialRepository handles database operations for study materials
type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create inserts a study material
func (r *MaterialRepository) Create(material *model.StudyMaterial) error {
	return r.db.Create(material).Error
}

// List returns materials with optional course and type filters, newest first
func (r *MaterialRepository) List(courseCode, materialType string) ([]model.StudyMaterial, error) {
	q := r.db.Model(&model.StudyMaterial{})
	if courseCode != "" {
		q = q.Where("course_code = ?", courseCode)
	}
	if materialType != "" {
		q = q.Where("type = ?", materialType)
	}
	var materials []model.StudyMaterial
	err := q.Order("uploaded_at DESC").Find(&materials).Error
	return materials, err
}
