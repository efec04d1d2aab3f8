package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
	"github.com/dentanet/api/internal/ws"
)

type evaluationTestEnv struct {
	svc           *EvaluationService
	exams         *repository.ExamRepository
	notifications *repository.NotificationRepository
	db            *gorm.DB
}

func newEvaluationTestEnv(t *testing.T) *evaluationTestEnv {
	t.Helper()
	db := setupTestDB(t)
	exams := repository.NewExamRepository(db)
	notifications := repository.NewNotificationRepository(db)
	notify := NewNotificationService(notifications, ws.NewHub(nil), nil)
	return &evaluationTestEnv{
		svc:           NewEvaluationService(repository.NewEvaluationRepository(db), exams, notify),
		exams:         exams,
		notifications: notifications,
		db:            db,
	}
}

// seedGradedWork creates an exam with one submission and returns the
// submission and its student
func seedGradedWork(t *testing.T, db *gorm.DB) (*model.ExamSubmission, uuid.UUID) {
	t.Helper()
	clk := newTestClock()
	exam := seedExam(t, db, clk.Now(), 120)
	studentID := uuid.New()
	sub := &model.ExamSubmission{
		ID:          uuid.New(),
		ExamID:      exam.ID,
		StudentID:   studentID,
		FileURL:     "http://files.test/submissions/1.pdf",
		FileKey:     "submissions/1.pdf",
		FileName:    "cavity.pdf",
		FileSize:    4096,
		MimeType:    "application/pdf",
		Status:      model.SubmissionStatusSubmitted,
		SubmittedAt: clk.Now(),
	}
	require.NoError(t, db.Create(sub).Error)
	return sub, studentID
}

func aiRequest(submissionID uuid.UUID) model.AIEvaluationRequest {
	return model.AIEvaluationRequest{
		SubmissionID:          submissionID,
		FinalGrade:            "B+",
		AIComment:             "Outline form acceptable, floor slightly angled",
		SmoothOutlineStatus:   "pass",
		FlatFloorStatus:       "borderline",
		DepthStatus:           "pass",
		UndercutStatus:        "pass",
		ProcessingTimeSeconds: 12.4,
	}
}

func TestEvaluation_AIResultIsProvisional(t *testing.T) {
	env := newEvaluationTestEnv(t)
	sub, studentID := seedGradedWork(t, env.db)

	eval, err := env.svc.RecordAI(aiRequest(sub.ID))
	require.NoError(t, err)
	assert.Equal(t, "B+", eval.FinalGrade)

	// Status advances to evaluated but no final grade is recorded yet
	reloaded, err := env.exams.FindSubmissionByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusEvaluated, reloaded.Status)
	assert.Nil(t, reloaded.FinalGrade)

	// The student is told
	rows, err := env.notifications.ListForUser(studentID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AI evaluation ready", rows[0].Title)
}

func TestEvaluation_OneAIEvaluationPerSubmission(t *testing.T) {
	env := newEvaluationTestEnv(t)
	sub, _ := seedGradedWork(t, env.db)

	_, err := env.svc.RecordAI(aiRequest(sub.ID))
	require.NoError(t, err)

	_, err = env.svc.RecordAI(aiRequest(sub.ID))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEvaluation_AIUnknownSubmission(t *testing.T) {
	env := newEvaluationTestEnv(t)

	_, err := env.svc.RecordAI(aiRequest(uuid.New()))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvaluation_LecturerGradeIsFinal(t *testing.T) {
	env := newEvaluationTestEnv(t)
	sub, studentID := seedGradedWork(t, env.db)
	lecturer := seedUser(t, env.db, &model.User{
		ID:           uuid.New(),
		Email:        "grader@dentanet.edu",
		PasswordHash: "x",
		FullName:     "Adaeze Obi",
		FirstName:    "Adaeze",
		LastName:     "Obi",
		Role:         model.RoleLecturer,
		IsActive:     true,
	})

	_, err := env.svc.RecordAI(aiRequest(sub.ID))
	require.NoError(t, err)

	eval, err := env.svc.RecordLecturer(lecturer.ID, model.LecturerEvaluationRequest{
		SubmissionID:  sub.ID,
		LecturerGrade: "A",
		Feedback:      "Excellent depth control",
		OverrideAI:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "A", eval.LecturerGrade)

	reloaded, err := env.exams.FindSubmissionByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusGraded, reloaded.Status)
	require.NotNil(t, reloaded.FinalGrade)
	assert.Equal(t, "A", *reloaded.FinalGrade)

	rows, err := env.notifications.ListForUser(studentID, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestEvaluation_DetailRestrictedToOwner(t *testing.T) {
	env := newEvaluationTestEnv(t)
	sub, studentID := seedGradedWork(t, env.db)
	lecturer := seedUser(t, env.db, &model.User{
		ID:           uuid.New(),
		Email:        "grader@dentanet.edu",
		PasswordHash: "x",
		FullName:     "Adaeze Obi",
		FirstName:    "Adaeze",
		LastName:     "Obi",
		Role:         model.RoleLecturer,
		IsActive:     true,
	})

	_, err := env.svc.RecordAI(aiRequest(sub.ID))
	require.NoError(t, err)
	_, err = env.svc.RecordLecturer(lecturer.ID, model.LecturerEvaluationRequest{
		SubmissionID:  sub.ID,
		LecturerGrade: "A-",
		Feedback:      "Good margins",
	})
	require.NoError(t, err)

	_, err = env.svc.Detail(sub.ID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrAccessDenied)

	detail, err := env.svc.Detail(sub.ID, studentID, false)
	require.NoError(t, err)
	require.NotNil(t, detail.AIEvaluation)
	require.NotNil(t, detail.LecturerEvaluation)
	assert.Equal(t, "A-", detail.LecturerEvaluation.LecturerGrade)
	assert.Equal(t, "Adaeze", detail.LecturerEvaluation.FirstName)

	// Staff can read any submission's evaluations
	_, err = env.svc.Detail(sub.ID, uuid.New(), true)
	assert.NoError(t, err)
}

func TestMaterial_UploadAndList(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStorage{}
	svc := NewMaterialService(repository.NewMaterialRepository(db), store)

	material, err := svc.Upload(context.Background(), uuid.New(), "Amalgam handling", "RES301", "notes",
		nil, examFileHeader("amalgam.pdf", "application/pdf", 2048))
	require.NoError(t, err)
	assert.Contains(t, material.FileKey, "materials/")

	listed, err := svc.List("RES301", "")
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	listed, err = svc.List("ORT101", "")
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = svc.Upload(context.Background(), uuid.New(), "", "RES301", "notes",
		nil, examFileHeader("amalgam.pdf", "application/pdf", 2048))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestMaterial_UploadWithoutStorage(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaterialService(repository.NewMaterialRepository(db), nil)

	_, err := svc.Upload(context.Background(), uuid.New(), "Amalgam handling", "RES301", "notes",
		nil, examFileHeader("amalgam.pdf", "application/pdf", 2048))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
