package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessCode is a single-use, time-limited numeric credential proving admin
// approval. A teacher exchanges it once to complete account verification.
// Codes are never deleted; expiry is evaluated at read time.
type AccessCode struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	TeacherID uuid.UUID  `json:"teacher_id"`
	Email     string     `json:"email"`
	IsUsed    bool       `json:"is_used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}

// AccessCodeState is the lifecycle of a code, with expiry computed at
// read time rather than swept by a background job.
type AccessCodeState string

const (
	AccessCodeActive   AccessCodeState = "active"
	AccessCodeRedeemed AccessCodeState = "redeemed"
	AccessCodeExpired  AccessCodeState = "expired"
)

// State derives the code lifecycle state at the given instant.
func (a *AccessCode) State(now time.Time) AccessCodeState {
	switch {
	case a.IsUsed:
		return AccessCodeRedeemed
	case !now.Before(a.ExpiresAt):
		return AccessCodeExpired
	default:
		return AccessCodeActive
	}
}

// VerifyCodeRequest is the payload a teacher submits to redeem a code.
// The code is always a fixed-width 6-digit string.
type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required,len=6,number"`
}

// IssuedAccessCode is the approval response body nested under "accessCode".
// The plaintext code is returned to the admin and mailed to the teacher.
type IssuedAccessCode struct {
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}
