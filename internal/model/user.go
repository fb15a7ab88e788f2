package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies what a user account is allowed to do.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Status is the account lifecycle state. Teachers start out pending until
// an admin-issued access code is redeemed; deactivated accounts become
// inactive rather than being deleted.
type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusInactive Status = "inactive"
)

// User represents any account: student, teacher, or admin.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	IsVerified   bool      `json:"is_verified"`
	// TeacherRef is the external registry number a teacher supplies at
	// registration. Empty for students and admins.
	TeacherRef string    `json:"teacher_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TeacherState is the verification lifecycle of a teacher account,
// derived from (Status, IsVerified).
type TeacherState string

const (
	TeacherPendingApproval    TeacherState = "pending_approval"
	TeacherAwaitingRedemption TeacherState = "awaiting_redemption"
	TeacherVerified           TeacherState = "verified"
	TeacherRejected           TeacherState = "rejected"
)

// TeacherStateOf derives the teacher lifecycle state. hasActiveCode comes
// from the access-code store (an unused, unexpired code exists).
func TeacherStateOf(u *User, hasActiveCode bool) TeacherState {
	switch {
	case u.Status == StatusInactive:
		return TeacherRejected
	case u.IsVerified:
		return TeacherVerified
	case hasActiveCode:
		return TeacherAwaitingRedemption
	default:
		return TeacherPendingApproval
	}
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128,strongpwd"`
	Role     Role   `json:"role" binding:"required,oneof=student teacher admin"`
	// Required when Role is teacher.
	TeacherRef string `json:"teacher_ref" binding:"omitempty,max=50"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// RefreshRequest exchanges a still-valid token for a fresh one.
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// UpdateUserRequest is the payload for profile updates.
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"required,email,max=255"`
}

// UserStats summarizes per-role activity counts for the dashboard.
type UserStats struct {
	Role            Role   `json:"role"`
	Status          Status `json:"status"`
	EnrolledCourses int    `json:"enrolled_courses,omitempty"`
	Submissions     int    `json:"submissions,omitempty"`
	Courses         int    `json:"courses,omitempty"`
	Assignments     int    `json:"assignments,omitempty"`
}
