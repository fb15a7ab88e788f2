package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentRepository handles assignment and submission data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assignments (course_id, teacher_id, title, description, due_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		a.CourseID, a.TeacherID, a.Title, a.Description, a.DueDate,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID retrieves an assignment by ID.
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, teacher_id, title, description, due_date, created_at, updated_at
		 FROM assignments WHERE id = $1`, id,
	).Scan(&a.ID, &a.CourseID, &a.TeacherID, &a.Title, &a.Description, &a.DueDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListByCourse retrieves a course's assignments ordered by due date.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, teacher_id, title, description, due_date, created_at, updated_at
		 FROM assignments WHERE course_id = $1 ORDER BY due_date`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.CourseID, &a.TeacherID, &a.Title, &a.Description,
			&a.DueDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Upsert a student's submission: first submit inserts, resubmit replaces
// the content and clears any previous grade.
func (r *AssignmentRepository) SaveSubmission(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (assignment_id, student_id, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (assignment_id, student_id)
		 DO UPDATE SET content = EXCLUDED.content, submitted_at = CURRENT_TIMESTAMP,
		               grade = NULL, feedback = ''
		 RETURNING id, submitted_at`,
		s.AssignmentID, s.StudentID, s.Content,
	).Scan(&s.ID, &s.SubmittedAt)
}

// GradeSubmission records a grade and feedback on a student's submission.
func (r *AssignmentRepository) GradeSubmission(ctx context.Context, assignmentID, studentID uuid.UUID, grade int, feedback string) (*model.Submission, error) {
	s := &model.Submission{}
	err := r.pool.QueryRow(ctx,
		`UPDATE submissions SET grade = $3, feedback = $4
		 WHERE assignment_id = $1 AND student_id = $2
		 RETURNING id, assignment_id, student_id, content, submitted_at, grade, feedback`,
		assignmentID, studentID, grade, feedback,
	).Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.Content, &s.SubmittedAt, &s.Grade, &s.Feedback)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListSubmissions retrieves all submissions for an assignment.
func (r *AssignmentRepository) ListSubmissions(ctx context.Context, assignmentID uuid.UUID) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, assignment_id, student_id, content, submitted_at, grade, feedback
		 FROM submissions WHERE assignment_id = $1 ORDER BY submitted_at`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.Content,
			&s.SubmittedAt, &s.Grade, &s.Feedback); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// CountByTeacher counts the assignments a teacher owns.
func (r *AssignmentRepository) CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignments WHERE teacher_id = $1`, teacherID).Scan(&n)
	return n, err
}

// CountSubmissionsByStudent counts a student's submissions across assignments.
func (r *AssignmentRepository) CountSubmissionsByStudent(ctx context.Context, studentID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE student_id = $1`, studentID).Scan(&n)
	return n, err
}
