package service

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
	"github.com/dentanet/api/pkg/storage"
)

// MaterialService handles lecturer-uploaded study resources
type MaterialService struct {
	materials *repository.MaterialRepository
	storage   storage.Storage
	now       func() time.Time
}

func NewMaterialService(materials *repository.MaterialRepository, store storage.Storage) *MaterialService {
	return &MaterialService{
		materials: materials,
		storage:   store,
		now:       time.Now,
	}
}

// Upload stores the file and records the material
func (s *MaterialService) Upload(ctx context.Context, uploaderID uuid.UUID, title, courseCode, materialType string, file multipart.File, header *multipart.FileHeader) (*model.StudyMaterial, error) {
	if title == "" {
		return nil, invalid("title is required")
	}
	if materialType == "" {
		return nil, invalid("type is required")
	}

	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	result, err := s.storage.Upload(ctx, file, header, "materials")
	if err != nil {
		return nil, err
	}

	material := &model.StudyMaterial{
		ID:         uuid.New(),
		CourseCode: courseCode,
		Title:      title,
		Type:       materialType,
		FileURL:    result.URL,
		FileKey:    result.Key,
		FileName:   result.FileName,
		FileSize:   result.FileSize,
		MimeType:   result.MimeType,
		UploadedBy: uploaderID,
		UploadedAt: s.now(),
	}
	if err := s.materials.Create(material); err != nil {
		_ = s.storage.Delete(ctx, result.Key)
		return nil, err
	}
	return material, nil
}

// List returns materials, optionally filtered by course code and type
func (s *MaterialService) List(courseCode, materialType string) ([]model.StudyMaterial, error) {
	return s.materials.List(courseCode, materialType)
}
