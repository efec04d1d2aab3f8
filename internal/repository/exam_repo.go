package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
)

// ExamRepository handles database operations for exams and submissions
type ExamRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// CreateExam inserts an exam
func (r *ExamRepository) CreateExam(exam *model.Exam) error {
	return r.db.Create(exam).Error
}

// FindExamByID finds an exam by UUID
func (r *ExamRepository) FindExamByID(id uuid.UUID) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.Where("id = ?", id).First(&exam).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListExams returns all exams, newest first
func (r *ExamRepository) ListExams() ([]model.Exam, error) {
	var exams []model.Exam
	err := r.db.Order("exam_date DESC").Find(&exams).Error
	return exams, err
}

// CreateSubmission inserts an exam submission
func (r *ExamRepository) CreateSubmission(sub *model.ExamSubmission) error {
	return r.db.Create(sub).Error
}

// FindSubmissionByID finds a submission by UUID
func (r *ExamRepository) FindSubmissionByID(id uuid.UUID) (*model.ExamSubmission, error) {
	var sub model.ExamSubmission
	err := r.db.Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindSubmissionForExam finds a student's existing submission for an exam
func (r *ExamRepository) FindSubmissionForExam(examID, studentID uuid.UUID) (*model.ExamSubmission, error) {
	var sub model.ExamSubmission
	err := r.db.Where("exam_id = ? AND student_id = ?", examID, studentID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubmissions returns submissions, newest first. A zero studentID
// returns every submission (staff view); otherwise only the student's own.
func (r *ExamRepository) ListSubmissions(studentID uuid.UUID) ([]model.ExamSubmission, error) {
	q := r.db.Model(&model.ExamSubmission{})
	if studentID != uuid.Nil {
		q = q.Where("student_id = ?", studentID)
	}
	var subs []model.ExamSubmission
	err := q.Order("submitted_at DESC").Find(&subs).Error
	return subs, err
}

// UpdateSubmissionStatus moves a submission through the evaluation pipeline
func (r *ExamRepository) UpdateSubmissionStatus(id uuid.UUID, status model.SubmissionStatus) error {
	return r.db.Model(&model.ExamSubmission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SetFinalGrade records the lecturer's final grade and status in one update
func (r *ExamRepository) SetFinalGrade(id uuid.UUID, grade string, status model.SubmissionStatus) error {
	return r.db.Model(&model.ExamSubmission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"final_grade": grade,
			"status":      status,
		}).Error
}
