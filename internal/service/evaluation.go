package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
)

// EvaluationService records AI and lecturer assessments of exam
// submissions. The AI result is provisional; a lecturer grade is final and
// moves the submission to graded.
type EvaluationService struct {
	evaluations *repository.EvaluationRepository
	exams       *repository.ExamRepository
	notify      *NotificationService
}

func NewEvaluationService(evaluations *repository.EvaluationRepository, exams *repository.ExamRepository, notify *NotificationService) *EvaluationService {
	return &EvaluationService{
		evaluations: evaluations,
		exams:       exams,
		notify:      notify,
	}
}

// RecordAI stores the grading pipeline's result and marks the submission
// evaluated. One AI evaluation per submission.
func (s *EvaluationService) RecordAI(req model.AIEvaluationRequest) (*model.AIEvaluation, error) {
	sub, err := s.exams.FindSubmissionByID(req.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := s.evaluations.FindAIBySubmission(req.SubmissionID); err == nil {
		return nil, invalid("submission already has an AI evaluation")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	eval := &model.AIEvaluation{
		ID:                    uuid.New(),
		SubmissionID:          req.SubmissionID,
		FinalGrade:            req.FinalGrade,
		AIComment:             req.AIComment,
		SmoothOutlineStatus:   req.SmoothOutlineStatus,
		FlatFloorStatus:       req.FlatFloorStatus,
		DepthStatus:           req.DepthStatus,
		UndercutStatus:        req.UndercutStatus,
		ProcessingTimeSeconds: req.ProcessingTimeSeconds,
	}
	if err := s.evaluations.CreateAI(eval); err != nil {
		return nil, err
	}

	if err := s.exams.UpdateSubmissionStatus(sub.ID, model.SubmissionStatusEvaluated); err != nil {
		return nil, err
	}

	if err := s.notify.Notify(sub.StudentID, "evaluation", "AI evaluation ready",
		fmt.Sprintf("Your submission received a provisional grade of %s", req.FinalGrade)); err != nil {
		log.Printf("⚠️  Failed to notify %s of AI evaluation: %v", sub.StudentID, err)
	}
	return eval, nil
}

// RecordLecturer stores the human grade. It becomes the submission's final
// grade and the student is notified.
func (s *EvaluationService) RecordLecturer(lecturerID uuid.UUID, req model.LecturerEvaluationRequest) (*model.LecturerEvaluation, error) {
	sub, err := s.exams.FindSubmissionByID(req.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	eval := &model.LecturerEvaluation{
		ID:            uuid.New(),
		SubmissionID:  req.SubmissionID,
		LecturerID:    lecturerID,
		LecturerGrade: req.LecturerGrade,
		Feedback:      req.Feedback,
		OverrideAI:    req.OverrideAI,
	}
	if err := s.evaluations.CreateLecturer(eval); err != nil {
		return nil, err
	}

	if err := s.exams.SetFinalGrade(sub.ID, req.LecturerGrade, model.SubmissionStatusGraded); err != nil {
		return nil, err
	}

	if err := s.notify.Notify(sub.StudentID, "evaluation", "Submission graded",
		fmt.Sprintf("Your submission has been graded: %s", req.LecturerGrade)); err != nil {
		log.Printf("⚠️  Failed to notify %s of lecturer grade: %v", sub.StudentID, err)
	}
	return eval, nil
}

// Detail returns both evaluations for a submission, restricted to its
// owner unless the caller is staff.
func (s *EvaluationService) Detail(submissionID, callerID uuid.UUID, staff bool) (*model.EvaluationDetail, error) {
	sub, err := s.exams.FindSubmissionByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !staff && sub.StudentID != callerID {
		return nil, ErrAccessDenied
	}
	return s.evaluations.Detail(submissionID)
}
