package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/rs/zerolog"
)

// ErrNotAssignmentOwner signals a grade attempt by someone other than the
// assignment's teacher (admins bypass this check).
var ErrNotAssignmentOwner = errors.New("not the assignment owner")

// AssignmentService handles assignments, submissions, and grading.
type AssignmentService struct {
	assignments AssignmentStore
	courses     CourseStore
	log         zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(assignments AssignmentStore, courses CourseStore, log zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		courses:     courses,
		log:         log.With().Str("component", "assignment_service").Logger(),
	}
}

// Create adds an assignment to a course owned by the caller (or any course
// for admins).
func (s *AssignmentService) Create(ctx context.Context, callerID uuid.UUID, callerRole model.Role, req *model.CreateAssignmentRequest) (*model.Assignment, error) {
	course, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleAdmin && course.TeacherID != callerID {
		return nil, ErrNotAssignmentOwner
	}

	a := &model.Assignment{
		CourseID:    req.CourseID,
		TeacherID:   course.TeacherID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if err := s.assignments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByCourse retrieves a course's assignments.
func (s *AssignmentService) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Assignment, error) {
	return s.assignments.ListByCourse(ctx, courseID)
}

// Submit records a student's submission. Resubmitting replaces the
// content and clears any earlier grade.
func (s *AssignmentService) Submit(ctx context.Context, assignmentID, studentID uuid.UUID, content string) (*model.Submission, error) {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		return nil, err
	}
	sub := &model.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Content:      content,
	}
	if err := s.assignments.SaveSubmission(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Grade records a grade on a student's submission. Only the assignment's
// teacher or an admin may grade.
func (s *AssignmentService) Grade(ctx context.Context, callerID uuid.UUID, callerRole model.Role, assignmentID, studentID uuid.UUID, grade int, feedback string) (*model.Submission, error) {
	a, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleAdmin && a.TeacherID != callerID {
		return nil, ErrNotAssignmentOwner
	}
	return s.assignments.GradeSubmission(ctx, assignmentID, studentID, grade, feedback)
}

// ListSubmissions retrieves all submissions for an assignment, restricted
// to the owning teacher or an admin.
func (s *AssignmentService) ListSubmissions(ctx context.Context, callerID uuid.UUID, callerRole model.Role, assignmentID uuid.UUID) ([]model.Submission, error) {
	a, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleAdmin && a.TeacherID != callerID {
		return nil, ErrNotAssignmentOwner
	}
	return s.assignments.ListSubmissions(ctx, assignmentID)
}
