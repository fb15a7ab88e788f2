package model

import (
	"time"

	"github.com/google/uuid"
)

// Certificate records course completion for a student.
type Certificate struct {
	ID             uuid.UUID `json:"id"`
	StudentID      uuid.UUID `json:"student_id"`
	CourseID       uuid.UUID `json:"course_id"`
	CertificateURL string    `json:"certificate_url"`
	IssuedAt       time.Time `json:"issued_at"`
}

// IssueCertificateRequest is the payload for certificate issuance.
type IssueCertificateRequest struct {
	StudentID      uuid.UUID `json:"student_id" binding:"required"`
	CourseID       uuid.UUID `json:"course_id" binding:"required"`
	CertificateURL string    `json:"certificate_url" binding:"omitempty,url,max=2000"`
}
