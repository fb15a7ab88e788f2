package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/rs/zerolog"
)

// CertificateService handles course-completion certificates.
type CertificateService struct {
	certs   CertificateStore
	courses CourseStore
	users   UserStore
	log     zerolog.Logger
}

// NewCertificateService creates a new CertificateService.
func NewCertificateService(certs CertificateStore, courses CourseStore, users UserStore, log zerolog.Logger) *CertificateService {
	return &CertificateService{
		certs:   certs,
		courses: courses,
		users:   users,
		log:     log.With().Str("component", "certificate_service").Logger(),
	}
}

// Issue creates a certificate for a student on a course. Both must exist.
func (s *CertificateService) Issue(ctx context.Context, req *model.IssueCertificateRequest) (*model.Certificate, error) {
	if _, err := s.users.GetByID(ctx, req.StudentID); err != nil {
		return nil, err
	}
	if _, err := s.courses.GetByID(ctx, req.CourseID); err != nil {
		return nil, err
	}

	c := &model.Certificate{
		StudentID:      req.StudentID,
		CourseID:       req.CourseID,
		CertificateURL: req.CertificateURL,
	}
	if err := s.certs.Create(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("student_id", c.StudentID.String()).
		Str("course_id", c.CourseID.String()).
		Msg("Certificate issued")

	return c, nil
}

// ListByStudent retrieves a student's certificates.
func (s *CertificateService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Certificate, error) {
	return s.certs.ListByStudent(ctx, studentID)
}
