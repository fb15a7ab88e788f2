package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `id, title, description, teacher_id, video_url, notes_url, status, created_at, updated_at`

// CourseRepository handles course and enrollment data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	c := &model.Course{}
	var notesURL *string
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.TeacherID, &c.VideoURL,
		&notesURL, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if notesURL != nil {
		c.NotesURL = *notesURL
	}
	return c, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	var notesURL *string
	if c.NotesURL != "" {
		notesURL = &c.NotesURL
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, teacher_id, video_url, notes_url, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.Title, c.Description, c.TeacherID, c.VideoURL, notesURL, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID retrieves a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return scanCourse(r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
}

// Update modifies a course, including its publication status.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	var notesURL *string
	if c.NotesURL != "" {
		notesURL = &c.NotesURL
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses
		 SET title = $2, description = $3, video_url = $4, notes_url = $5, status = $6,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1`,
		c.ID, c.Title, c.Description, c.VideoURL, notesURL, c.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPublished retrieves published courses, newest first.
func (r *CourseRepository) ListPublished(ctx context.Context) ([]model.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses WHERE status = 'published' ORDER BY created_at DESC`)
}

// ListByTeacher retrieves a teacher's courses regardless of status.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses WHERE teacher_id = $1 ORDER BY created_at DESC`, teacherID)
}

// ListAll retrieves every course.
func (r *CourseRepository) ListAll(ctx context.Context) ([]model.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
}

// ListEnrolled retrieves the courses a student is enrolled in.
func (r *CourseRepository) ListEnrolled(ctx context.Context, studentID uuid.UUID) ([]model.Course, error) {
	return r.list(ctx,
		`SELECT c.id, c.title, c.description, c.teacher_id, c.video_url, c.notes_url, c.status, c.created_at, c.updated_at
		 FROM courses c
		 JOIN enrollments e ON e.course_id = c.id
		 WHERE e.student_id = $1
		 ORDER BY e.enrolled_at DESC`, studentID)
}

// Enroll adds a student to a course. Enrolling twice is a no-op.
func (r *CourseRepository) Enroll(ctx context.Context, courseID, studentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrollments (course_id, student_id)
		 VALUES ($1, $2)
		 ON CONFLICT (course_id, student_id) DO NOTHING`,
		courseID, studentID)
	return err
}

// CountByTeacher counts the courses a teacher owns.
func (r *CourseRepository) CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM courses WHERE teacher_id = $1`, teacherID).Scan(&n)
	return n, err
}

// CountEnrolledByStudent counts a student's enrollments.
func (r *CourseRepository) CountEnrolledByStudent(ctx context.Context, studentID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE student_id = $1`, studentID).Scan(&n)
	return n, err
}

func (r *CourseRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}
