package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/model"
)

// Store interfaces consumed by the services. The pgx repositories in
// internal/repository satisfy them; tests substitute in-memory fakes.

// UserStore is the persistence surface for user accounts.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (*model.User, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.Status) (*model.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	ListPendingTeachers(ctx context.Context) ([]model.User, error)
}

// AccessCodeStore is the persistence surface for teacher access codes.
type AccessCodeStore interface {
	Create(ctx context.Context, a *model.AccessCode) error
	ExpireUnusedForTeacher(ctx context.Context, teacherID uuid.UUID, now time.Time) error
	Redeem(ctx context.Context, code string, teacherID uuid.UUID, now time.Time) (*model.AccessCode, error)
	HasActiveCode(ctx context.Context, teacherID uuid.UUID, now time.Time) (bool, error)
}

// CourseStore is the persistence surface for courses and enrollments.
type CourseStore interface {
	Create(ctx context.Context, c *model.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Update(ctx context.Context, c *model.Course) error
	ListPublished(ctx context.Context) ([]model.Course, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Course, error)
	ListAll(ctx context.Context) ([]model.Course, error)
	ListEnrolled(ctx context.Context, studentID uuid.UUID) ([]model.Course, error)
	Enroll(ctx context.Context, courseID, studentID uuid.UUID) error
	CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int, error)
	CountEnrolledByStudent(ctx context.Context, studentID uuid.UUID) (int, error)
}

// AssignmentStore is the persistence surface for assignments and submissions.
type AssignmentStore interface {
	Create(ctx context.Context, a *model.Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Assignment, error)
	SaveSubmission(ctx context.Context, s *model.Submission) error
	GradeSubmission(ctx context.Context, assignmentID, studentID uuid.UUID, grade int, feedback string) (*model.Submission, error)
	ListSubmissions(ctx context.Context, assignmentID uuid.UUID) ([]model.Submission, error)
	CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int, error)
	CountSubmissionsByStudent(ctx context.Context, studentID uuid.UUID) (int, error)
}

// CertificateStore is the persistence surface for certificates.
type CertificateStore interface {
	Create(ctx context.Context, c *model.Certificate) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Certificate, error)
}
