package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/guptas/lms-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ErrEmailTaken signals a registration or profile update against an email
// already in use.
var ErrEmailTaken = errors.New("email already registered")

// UserService handles account creation and profile operations.
type UserService struct {
	users       UserStore
	courses     CourseStore
	assignments AssignmentStore
	log         zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, courses CourseStore, assignments AssignmentStore, log zerolog.Logger) *UserService {
	return &UserService{
		users:       users,
		courses:     courses,
		assignments: assignments,
		log:         log.With().Str("component", "user_service").Logger(),
	}
}

// Register creates a new account. Students start active and verified;
// teachers start pending and unverified until an admin approves them and
// they redeem the access code; admins start active but unverified.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest, passwordHash string) (*model.User, error) {
	u := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		Status:       model.StatusActive,
		IsVerified:   req.Role == model.RoleStudent,
	}
	if req.Role == model.RoleTeacher {
		u.Status = model.StatusPending
		u.TeacherRef = req.TeacherRef
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().
		Str("user_id", u.ID.String()).
		Str("role", string(u.Role)).
		Msg("User registered")

	return u, nil
}

// GetByID retrieves a user.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByEmail retrieves a user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// UpdateProfile changes a user's name and email.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (*model.User, error) {
	u, err := s.users.UpdateProfile(ctx, id, name, email)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// RejectTeacher deactivates a pending teacher account.
func (s *UserService) RejectTeacher(ctx context.Context, teacherID uuid.UUID) (*model.User, error) {
	u, err := s.users.GetByID(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleTeacher {
		return nil, repository.ErrNotFound
	}
	return s.users.SetStatus(ctx, teacherID, model.StatusInactive)
}

// ListAll retrieves every user.
func (s *UserService) ListAll(ctx context.Context) ([]model.User, error) {
	return s.users.ListAll(ctx)
}

// ListPendingTeachers retrieves teacher accounts awaiting approval.
func (s *UserService) ListPendingTeachers(ctx context.Context) ([]model.User, error) {
	return s.users.ListPendingTeachers(ctx)
}

// GetStats assembles role-dependent activity counts for a user.
func (s *UserService) GetStats(ctx context.Context, id uuid.UUID) (*model.UserStats, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &model.UserStats{Role: u.Role, Status: u.Status}

	switch u.Role {
	case model.RoleStudent:
		if stats.EnrolledCourses, err = s.courses.CountEnrolledByStudent(ctx, id); err != nil {
			return nil, fmt.Errorf("count enrollments: %w", err)
		}
		if stats.Submissions, err = s.assignments.CountSubmissionsByStudent(ctx, id); err != nil {
			return nil, fmt.Errorf("count submissions: %w", err)
		}
	case model.RoleTeacher:
		if stats.Courses, err = s.courses.CountByTeacher(ctx, id); err != nil {
			return nil, fmt.Errorf("count courses: %w", err)
		}
		if stats.Assignments, err = s.assignments.CountByTeacher(ctx, id); err != nil {
			return nil, fmt.Errorf("count assignments: %w", err)
		}
	}

	return stats, nil
}
