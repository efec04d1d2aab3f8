package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dentanet/api/internal/config"
	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
	"github.com/dentanet/api/pkg/storage"
)

var testDBSeq int64

// setupTestDB opens a fresh in-memory sqlite database. The schema is created
// with explicit DDL because the production models carry postgres defaults
// (gen_random_uuid) that sqlite cannot evaluate; tests always set IDs
// themselves.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			phone TEXT DEFAULT '',
			profile_image_url TEXT DEFAULT '',
			role TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			login_attempts INTEGER NOT NULL DEFAULT 0,
			locked_until DATETIME,
			last_login_at DATETIME,
			last_login_ip TEXT DEFAULT '',
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE students (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			batch_year INTEGER NOT NULL,
			registration_number TEXT NOT NULL UNIQUE,
			department TEXT DEFAULT '',
			academic_status TEXT DEFAULT 'Active'
		)`,
		`CREATE TABLE lecturers (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			staff_id TEXT UNIQUE,
			department TEXT NOT NULL,
			designation TEXT DEFAULT 'Lecturer',
			office_location TEXT DEFAULT ''
		)`,
		`CREATE TABLE admins (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			admin_level TEXT DEFAULT 'standard',
			permissions TEXT DEFAULT ''
		)`,
		`CREATE TABLE lab_machines (
			id TEXT PRIMARY KEY,
			machine_code TEXT NOT NULL UNIQUE,
			lab_number TEXT NOT NULL,
			is_operational BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME
		)`,
		`CREATE TABLE lab_bookings (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			machine_id TEXT NOT NULL,
			booking_type TEXT NOT NULL,
			booking_date DATETIME NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			duration_hours REAL NOT NULL,
			purpose TEXT DEFAULT '',
			status TEXT DEFAULT 'pending',
			approved_by TEXT,
			approved_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME
		)`,
		`CREATE TABLE exams (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			course_code TEXT NOT NULL,
			exam_date DATETIME NOT NULL,
			duration_minutes INTEGER NOT NULL,
			created_by TEXT NOT NULL,
			created_at DATETIME
		)`,
		`CREATE TABLE exam_submissions (
			id TEXT PRIMARY KEY,
			exam_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			file_url TEXT NOT NULL,
			file_key TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_size INTEGER NOT NULL,
			mime_type TEXT NOT NULL,
			status TEXT DEFAULT 'submitted',
			final_grade TEXT,
			submitted_at DATETIME
		)`,
		`CREATE TABLE ai_evaluations (
			id TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL UNIQUE,
			final_grade TEXT NOT NULL,
			ai_comment TEXT DEFAULT '',
			smooth_outline_status TEXT NOT NULL,
			flat_floor_status TEXT NOT NULL,
			depth_status TEXT NOT NULL,
			undercut_status TEXT NOT NULL,
			processing_time_seconds REAL,
			created_at DATETIME
		)`,
		`CREATE TABLE lecturer_evaluations (
			id TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL,
			lecturer_id TEXT NOT NULL,
			lecturer_grade TEXT NOT NULL,
			feedback TEXT DEFAULT '',
			override_ai BOOLEAN DEFAULT 0,
			created_at DATETIME
		)`,
		`CREATE TABLE study_materials (
			id TEXT PRIMARY KEY,
			course_code TEXT DEFAULT '',
			title TEXT NOT NULL,
			type TEXT NOT NULL,
			file_url TEXT NOT NULL,
			file_key TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_size INTEGER NOT NULL,
			mime_type TEXT NOT NULL,
			uploaded_by TEXT NOT NULL,
			uploaded_at DATETIME
		)`,
		`CREATE TABLE otp_codes (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			code TEXT NOT NULL,
			purpose TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			verified_at DATETIME,
			used_at DATETIME,
			created_at DATETIME
		)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		LoginMaxAttempts:   5,
		LoginLockDuration:  15 * time.Minute,
		OTPResetTTL:        2 * time.Minute,
		OTPRegistrationTTL: 5 * time.Minute,
		OTPRateLimit:       3,
		OTPRateWindow:      time.Hour,
		OTPStrictDelivery:  true,
	}
}

// testClock is an adjustable time source injected into services
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentMail struct {
	To      string
	Name    string
	Code    string
	Minutes int
}

// fakeMailer records deliveries and can be told to fail
type fakeMailer struct {
	mu     sync.Mutex
	OTPs   []sentMail
	Resets []sentMail
	Fail   bool
}

func (m *fakeMailer) SendOTP(toEmail, name, code string, expiryMinutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("smtp: connection refused")
	}
	m.OTPs = append(m.OTPs, sentMail{To: toEmail, Name: name, Code: code, Minutes: expiryMinutes})
	return nil
}

func (m *fakeMailer) SendPasswordReset(toEmail, name, code string, expiryMinutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("smtp: connection refused")
	}
	m.Resets = append(m.Resets, sentMail{To: toEmail, Name: name, Code: code, Minutes: expiryMinutes})
	return nil
}

func (m *fakeMailer) lastOTP(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.OTPs, "expected at least one OTP email")
	return m.OTPs[len(m.OTPs)-1]
}

func (m *fakeMailer) lastReset(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.Resets, "expected at least one reset email")
	return m.Resets[len(m.Resets)-1]
}

// fakeStorage implements storage.Storage in memory. Keys count uploads so
// each object key is distinct.
type fakeStorage struct {
	mu       sync.Mutex
	uploads  int
	deleted  []string
	FailUp   bool
	FailSign bool
}

func (f *fakeStorage) Upload(_ context.Context, _ multipart.File, header *multipart.FileHeader, folder string) (*storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailUp {
		return nil, errors.New("storage: connection refused")
	}
	f.uploads++
	key := fmt.Sprintf("%s/%d%s", folder, f.uploads, filepath.Ext(header.Filename))
	return &storage.UploadResult{
		URL:      "http://files.test/" + key,
		Key:      key,
		FileName: header.Filename,
		FileSize: header.Size,
		MimeType: header.Header.Get("Content-Type"),
	}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return "http://files.test/" + key
}

func (f *fakeStorage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.FailSign {
		return "", errors.New("storage: connection refused")
	}
	return "http://files.test/" + key + "?signature=ok", nil
}

// examFileHeader builds an upload header without going through a real
// multipart request
func examFileHeader(name, mimeType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{mimeType}},
	}
}

// newTestOTPManager wires an OTP manager onto the test database with a fake
// mailer, no redis limiter, and a controllable clock
func newTestOTPManager(db *gorm.DB, mailer *fakeMailer, clk *testClock, cfg config.SecurityConfig) *OTPManager {
	mgr := NewOTPManager(db, repository.NewOTPRepository(db), mailer, nil, cfg)
	mgr.now = clk.Now
	return mgr
}

func seedUser(t *testing.T, db *gorm.DB, user *model.User) *model.User {
	t.Helper()
	require.NoError(t, db.Create(user).Error)
	return user
}
