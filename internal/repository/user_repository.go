package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Common repository errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("user with this email already exists")
)

const userColumns = `id, name, email, password_hash, role, status, is_verified, teacher_ref, created_at, updated_at`

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var teacherRef *string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status,
		&u.IsVerified, &teacherRef, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if teacherRef != nil {
		u.TeacherRef = *teacherRef
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email. Lookup is case-insensitive.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower($1)`, strings.TrimSpace(email)))
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	var teacherRef *string
	if u.TeacherRef != "" {
		teacherRef = &u.TeacherRef
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, status, is_verified, teacher_ref)
		 VALUES ($1, lower($2), $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		u.Name, strings.TrimSpace(u.Email), u.PasswordHash, u.Role, u.Status, u.IsVerified, teacherRef,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// UpdateProfile modifies a user's name and email.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, email = lower($3), updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1
		 RETURNING `+userColumns, id, name, strings.TrimSpace(email))
	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

// SetStatus updates the account lifecycle state.
func (r *UserRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.Status) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET status = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1
		 RETURNING `+userColumns, id, status))
}

// MarkVerified flips is_verified and activates the account. Used exactly
// once per teacher, by code redemption.
func (r *UserRepository) MarkVerified(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET is_verified = TRUE, status = 'active', updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1
		 RETURNING `+userColumns, id))
}

// ListAll retrieves every user, newest first.
func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
}

// ListPendingTeachers retrieves teacher accounts awaiting approval.
func (r *UserRepository) ListPendingTeachers(ctx context.Context) ([]model.User, error) {
	return r.list(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE role = 'teacher' AND status = 'pending'
		 ORDER BY created_at`)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
