package model

import (
	"time"

	"github.com/google/uuid"
)

// AIEvaluation is the automated assessment of an exam submission. Each
// feature status is pass/fail/borderline as reported by the grading pipeline.
type AIEvaluation struct {
	ID                    uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubmissionID          uuid.UUID `json:"submission_id" gorm:"type:uuid;not null;uniqueIndex"`
	FinalGrade            string    `json:"final_grade" gorm:"size:5;not null"`
	AIComment             string    `json:"ai_comment" gorm:"size:2000;default:''"`
	SmoothOutlineStatus   string    `json:"smooth_outline_status" gorm:"size:20;not null"`
	FlatFloorStatus       string    `json:"flat_floor_status" gorm:"size:20;not null"`
	DepthStatus           string    `json:"depth_status" gorm:"size:20;not null"`
	UndercutStatus        string    `json:"undercut_status" gorm:"size:20;not null"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
	CreatedAt             time.Time `json:"created_at"`

	Submission ExamSubmission `json:"-" gorm:"foreignKey:SubmissionID"`
}

// LecturerEvaluation is the human grade for a submission. It becomes the
// final grade and may override the AI result.
type LecturerEvaluation struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubmissionID  uuid.UUID `json:"submission_id" gorm:"type:uuid;not null;index"`
	LecturerID    uuid.UUID `json:"lecturer_id" gorm:"type:uuid;not null"`
	LecturerGrade string    `json:"lecturer_grade" gorm:"size:5;not null"`
	Feedback      string    `json:"feedback" gorm:"size:2000;default:''"`
	OverrideAI    bool      `json:"override_ai" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`

	Submission ExamSubmission `json:"-" gorm:"foreignKey:SubmissionID"`
	Lecturer   User           `json:"-" gorm:"foreignKey:LecturerID"`
}

// LecturerEvaluationResponse includes the grader's name
type LecturerEvaluationResponse struct {
	LecturerEvaluation
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// EvaluationDetail bundles both evaluations for a submission
type EvaluationDetail struct {
	AIEvaluation       *AIEvaluation               `json:"ai_evaluation"`
	LecturerEvaluation *LecturerEvaluationResponse `json:"lecturer_evaluation"`
}
