package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCertificateExists signals a duplicate certificate for the same
// student and course pair.
var ErrCertificateExists = errors.New("certificate already issued for this student and course")

// CertificateRepository handles certificate data access.
type CertificateRepository struct {
	pool *pgxpool.Pool
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{pool: pool}
}

// Create inserts a new certificate.
func (r *CertificateRepository) Create(ctx context.Context, c *model.Certificate) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO certificates (student_id, course_id, certificate_url)
		 VALUES ($1, $2, $3)
		 RETURNING id, issued_at`,
		c.StudentID, c.CourseID, c.CertificateURL,
	).Scan(&c.ID, &c.IssuedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCertificateExists
		}
		return err
	}
	return nil
}

// ListByStudent retrieves a student's certificates, newest first.
func (r *CertificateRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Certificate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, course_id, certificate_url, issued_at
		 FROM certificates WHERE student_id = $1 ORDER BY issued_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []model.Certificate
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(&c.ID, &c.StudentID, &c.CourseID, &c.CertificateURL, &c.IssuedAt); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}
