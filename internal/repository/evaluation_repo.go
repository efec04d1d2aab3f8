package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
)

// EvaluationRepository handles database operations for AI and lecturer evaluations
type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// CreateAI inserts an AI evaluation
func (r *EvaluationRepository) CreateAI(eval *model.AIEvaluation) error {
	return r.db.Create(eval).Error
}

// FindAIBySubmission finds the AI evaluation of a submission
func (r *EvaluationRepository) FindAIBySubmission(submissionID uuid.UUID) (*model.AIEvaluation, error) {
	var eval model.AIEvaluation
	err := r.db.Where("submission_id = ?", submissionID).First(&eval).Error
	if err != nil {
		return nil, err
	}
	return &eval, nil
}

// CreateLecturer inserts a lecturer evaluation
func (r *EvaluationRepository) CreateLecturer(eval *model.LecturerEvaluation) error {
	return r.db.Create(eval).Error
}

// FindLecturerBySubmission finds the lecturer evaluation of a submission,
// joined with the grader's name
func (r *EvaluationRepository) FindLecturerBySubmission(submissionID uuid.UUID) (*model.LecturerEvaluationResponse, error) {
	var eval model.LecturerEvaluationResponse
	err := r.db.Model(&model.LecturerEvaluation{}).
		Select("lecturer_evaluations.*, users.first_name, users.last_name").
		Joins("JOIN users ON users.id = lecturer_evaluations.lecturer_id").
		Where("lecturer_evaluations.submission_id = ?", submissionID).
		First(&eval).Error
	if err != nil {
		return nil, err
	}
	return &eval, nil
}

// Detail returns both evaluations for a submission; either may be absent
func (r *EvaluationRepository) Detail(submissionID uuid.UUID) (*model.EvaluationDetail, error) {
	detail := &model.EvaluationDetail{}

	ai, err := r.FindAIBySubmission(submissionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	detail.AIEvaluation = ai

	lect, err := r.FindLecturerBySubmission(submissionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	detail.LecturerEvaluation = lect

	return detail, nil
}
