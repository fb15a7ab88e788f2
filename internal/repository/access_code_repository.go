package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateCode signals a collision on the unique code value. The issuer
// redraws and retries instead of surfacing this to the caller.
var ErrDuplicateCode = errors.New("access code value already exists")

// ErrCodeNotRedeemable covers every redemption miss: unknown code, wrong
// owner, already used, or expired. Callers must not learn which case applied.
var ErrCodeNotRedeemable = errors.New("access code not redeemable")

const accessCodeColumns = `id, code, teacher_id, email, is_used, used_at, expires_at, created_by, created_at`

// AccessCodeRepository handles access-code data access.
type AccessCodeRepository struct {
	pool *pgxpool.Pool
}

// NewAccessCodeRepository creates a new AccessCodeRepository.
func NewAccessCodeRepository(pool *pgxpool.Pool) *AccessCodeRepository {
	return &AccessCodeRepository{pool: pool}
}

// Create inserts a new access code. Returns ErrDuplicateCode when the code
// value collides with an existing row.
func (r *AccessCodeRepository) Create(ctx context.Context, a *model.AccessCode) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO access_codes (code, teacher_id, email, expires_at, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, is_used, created_at`,
		a.Code, a.TeacherID, a.Email, a.ExpiresAt, a.CreatedBy,
	).Scan(&a.ID, &a.IsUsed, &a.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

// ExpireUnusedForTeacher invalidates a teacher's outstanding unused codes by
// pulling their expiry back to now. Run before issuing a replacement so at
// most one code per teacher is ever redeemable.
func (r *AccessCodeRepository) ExpireUnusedForTeacher(ctx context.Context, teacherID uuid.UUID, now time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE access_codes SET expires_at = $2
		 WHERE teacher_id = $1 AND is_used = FALSE AND expires_at > $2`,
		teacherID, now)
	return err
}

// Redeem marks a code used in a single conditional update so two concurrent
// redemptions of the same code cannot both succeed. The WHERE clause scopes
// the match to the caller's own unused, unexpired code; zero rows updated
// means ErrCodeNotRedeemable.
func (r *AccessCodeRepository) Redeem(ctx context.Context, code string, teacherID uuid.UUID, now time.Time) (*model.AccessCode, error) {
	a := &model.AccessCode{}
	err := r.pool.QueryRow(ctx,
		`UPDATE access_codes SET is_used = TRUE, used_at = $3
		 WHERE code = $1 AND teacher_id = $2 AND is_used = FALSE AND expires_at > $3
		 RETURNING `+accessCodeColumns,
		code, teacherID, now,
	).Scan(&a.ID, &a.Code, &a.TeacherID, &a.Email, &a.IsUsed, &a.UsedAt,
		&a.ExpiresAt, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeNotRedeemable
		}
		return nil, err
	}
	return a, nil
}

// HasActiveCode reports whether the teacher holds an unused, unexpired code.
func (r *AccessCodeRepository) HasActiveCode(ctx context.Context, teacherID uuid.UUID, now time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM access_codes
			WHERE teacher_id = $1 AND is_used = FALSE AND expires_at > $2
		 )`, teacherID, now).Scan(&exists)
	return exists, err
}
