package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
	"github.com/dentanet/api/pkg/storage"
)

// SubmissionService handles exam creation and student work uploads. Uploads
// close at the exam deadline (start + duration + 2 hour grace); there are
// no extensions.
type SubmissionService struct {
	exams   *repository.ExamRepository
	storage storage.Storage
	now     func() time.Time
}

func NewSubmissionService(exams *repository.ExamRepository, store storage.Storage) *SubmissionService {
	return &SubmissionService{
		exams:   exams,
		storage: store,
		now:     time.Now,
	}
}

// CreateExam schedules a practical exam
func (s *SubmissionService) CreateExam(creatorID uuid.UUID, req model.CreateExamRequest) (*model.Exam, error) {
	examDate, err := time.Parse(time.RFC3339, req.ExamDate)
	if err != nil {
		return nil, invalid("exam date must be RFC 3339")
	}

	exam := &model.Exam{
		ID:              uuid.New(),
		Title:           req.Title,
		CourseCode:      req.CourseCode,
		ExamDate:        examDate,
		DurationMinutes: req.DurationMinutes,
		CreatedBy:       creatorID,
	}
	if err := s.exams.CreateExam(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// ListExams returns all scheduled exams
func (s *SubmissionService) ListExams() ([]model.Exam, error) {
	return s.exams.ListExams()
}

// Submit validates the file and deadline, uploads to object storage, and
// records the submission. One submission per student per exam.
func (s *SubmissionService) Submit(ctx context.Context, studentID, examID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*model.ExamSubmission, error) {
	exam, err := s.exams.FindExamByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.now().After(exam.SubmissionDeadline()) {
		return nil, invalid("submission deadline has passed")
	}

	if _, err := s.exams.FindSubmissionForExam(examID, studentID); err == nil {
		return nil, invalid("you have already submitted for this exam")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	mimeType := header.Header.Get("Content-Type")
	if err := ValidateExamFile(mimeType, header.Size); err != nil {
		return nil, err
	}

	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	result, err := s.storage.Upload(ctx, file, header, "submissions")
	if err != nil {
		return nil, err
	}

	sub := &model.ExamSubmission{
		ID:          uuid.New(),
		ExamID:      examID,
		StudentID:   studentID,
		FileURL:     result.URL,
		FileKey:     result.Key,
		FileName:    result.FileName,
		FileSize:    result.FileSize,
		MimeType:    result.MimeType,
		Status:      model.SubmissionStatusSubmitted,
		SubmittedAt: s.now(),
	}
	if err := s.exams.CreateSubmission(sub); err != nil {
		// The row is authoritative; clean up the orphaned object
		_ = s.storage.Delete(ctx, result.Key)
		return nil, err
	}
	return sub, nil
}

// ListSubmissions returns a student's submissions, or all submissions when
// studentID is uuid.Nil (staff view).
func (s *SubmissionService) ListSubmissions(studentID uuid.UUID) ([]model.ExamSubmission, error) {
	return s.exams.ListSubmissions(studentID)
}

// GetSubmission loads one submission, restricted to its owner unless the
// caller is staff. Submission objects are private in storage, so the stored
// URL is replaced with a short-lived signed one.
func (s *SubmissionService) GetSubmission(ctx context.Context, id, callerID uuid.UUID, staff bool) (*model.ExamSubmission, error) {
	sub, err := s.exams.FindSubmissionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !staff && sub.StudentID != callerID {
		return nil, ErrAccessDenied
	}

	if s.storage != nil {
		if signed, err := s.storage.SignedURL(ctx, sub.FileKey, 15*time.Minute); err == nil {
			sub.FileURL = signed
		}
	}
	return sub, nil
}
