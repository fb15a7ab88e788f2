package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/rs/zerolog"
)

// ErrNotCourseOwner signals an update attempt by someone other than the
// owning teacher (admins bypass this check).
var ErrNotCourseOwner = errors.New("not the course owner")

// CourseService handles course management and enrollment.
type CourseService struct {
	courses CourseStore
	log     zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(courses CourseStore, log zerolog.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		log:     log.With().Str("component", "course_service").Logger(),
	}
}

// Create adds a new draft course owned by the given teacher.
func (s *CourseService) Create(ctx context.Context, teacherID uuid.UUID, req *model.CreateCourseRequest) (*model.Course, error) {
	c := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   teacherID,
		VideoURL:    req.VideoURL,
		NotesURL:    req.NotesURL,
		Status:      model.CourseDraft,
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a course.
func (s *CourseService) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return s.courses.GetByID(ctx, id)
}

// Update modifies a course. Only the owning teacher or an admin may update.
func (s *CourseService) Update(ctx context.Context, callerID uuid.UUID, callerRole model.Role, id uuid.UUID, req *model.UpdateCourseRequest) (*model.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleAdmin && c.TeacherID != callerID {
		return nil, ErrNotCourseOwner
	}

	c.Title = req.Title
	c.Description = req.Description
	c.VideoURL = req.VideoURL
	c.NotesURL = req.NotesURL
	c.Status = req.Status

	if err := s.courses.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListFor returns the course listing appropriate to the caller's role:
// published courses for students, own courses for teachers, everything
// for admins.
func (s *CourseService) ListFor(ctx context.Context, callerID uuid.UUID, callerRole model.Role) ([]model.Course, error) {
	switch callerRole {
	case model.RoleAdmin:
		return s.courses.ListAll(ctx)
	case model.RoleTeacher:
		return s.courses.ListByTeacher(ctx, callerID)
	default:
		return s.courses.ListPublished(ctx)
	}
}

// ListEnrolled retrieves the courses a student is enrolled in.
func (s *CourseService) ListEnrolled(ctx context.Context, studentID uuid.UUID) ([]model.Course, error) {
	return s.courses.ListEnrolled(ctx, studentID)
}

// Enroll adds a student to a course. Enrolling twice is a no-op.
func (s *CourseService) Enroll(ctx context.Context, courseID, studentID uuid.UUID) error {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return err
	}
	if err := s.courses.Enroll(ctx, courseID, studentID); err != nil {
		return err
	}
	s.log.Info().
		Str("course_id", courseID.String()).
		Str("student_id", studentID.String()).
		Msg("Student enrolled")
	return nil
}
