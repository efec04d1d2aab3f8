package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is a scheduled practical exam students submit work for
type Exam struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title           string    `json:"title" gorm:"size:200;not null"`
	CourseCode      string    `json:"course_code" gorm:"size:20;not null"`
	ExamDate        time.Time `json:"exam_date" gorm:"not null"`
	DurationMinutes int       `json:"duration_minutes" gorm:"not null"`
	CreatedBy       uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt       time.Time `json:"created_at"`
}

// SubmissionDeadline is when uploads close: exam start + duration + a 2 hour
// grace window.
func (e *Exam) SubmissionDeadline() time.Time {
	return e.ExamDate.Add(time.Duration(e.DurationMinutes)*time.Minute + 2*time.Hour)
}

// SubmissionStatus tracks an exam submission through evaluation
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusEvaluated SubmissionStatus = "evaluated" // AI evaluation recorded
	SubmissionStatusGraded    SubmissionStatus = "graded"    // lecturer grade is final
)

// ExamSubmission is a student's uploaded work for an exam
type ExamSubmission struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExamID      uuid.UUID        `json:"exam_id" gorm:"type:uuid;not null;index"`
	StudentID   uuid.UUID        `json:"student_id" gorm:"type:uuid;not null;index"` // user id
	FileURL     string           `json:"file_url" gorm:"size:500;not null"`
	FileKey     string           `json:"-" gorm:"size:500;not null"`
	FileName    string           `json:"file_name" gorm:"size:255;not null"`
	FileSize    int64            `json:"file_size" gorm:"not null"`
	MimeType    string           `json:"mime_type" gorm:"size:100;not null"`
	Status      SubmissionStatus `json:"status" gorm:"type:submission_status;default:'submitted'"`
	FinalGrade  *string          `json:"final_grade" gorm:"size:5"`
	SubmittedAt time.Time        `json:"submitted_at"`

	Exam    Exam `json:"-" gorm:"foreignKey:ExamID"`
	Student User `json:"-" gorm:"foreignKey:StudentID"`
}
