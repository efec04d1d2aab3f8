package model

import (
	"time"

	"github.com/google/uuid"
)

// StudyMaterial is a lecturer-uploaded resource (lecture notes, videos, etc.)
type StudyMaterial struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseCode string    `json:"course_code" gorm:"size:20;index;default:''"`
	Title      string    `json:"title" gorm:"size:200;not null"`
	Type       string    `json:"type" gorm:"size:30;not null"` // notes, slides, video, reference
	FileURL    string    `json:"file_url" gorm:"size:500;not null"`
	FileKey    string    `json:"-" gorm:"size:500;not null"`
	FileName   string    `json:"file_name" gorm:"size:255;not null"`
	FileSize   int64     `json:"file_size" gorm:"not null"`
	MimeType   string    `json:"mime_type" gorm:"size:100;not null"`
	UploadedBy uuid.UUID `json:"uploaded_by" gorm:"type:uuid;not null"`
	UploadedAt time.Time `json:"uploaded_at"`

	Uploader User `json:"-" gorm:"foreignKey:UploadedBy"`
}
