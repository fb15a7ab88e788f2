package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment belongs to a course and collects student submissions.
type Assignment struct {
	ID          uuid.UUID `json:"id"`
	CourseID    uuid.UUID `json:"course_id"`
	TeacherID   uuid.UUID `json:"teacher_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Submission is a student's answer to an assignment. A student holds at
// most one submission per assignment; resubmitting replaces the content.
type Submission struct {
	ID           uuid.UUID `json:"id"`
	AssignmentID uuid.UUID `json:"assignment_id"`
	StudentID    uuid.UUID `json:"student_id"`
	Content      string    `json:"content"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Grade        *int      `json:"grade,omitempty"`
	Feedback     string    `json:"feedback,omitempty"`
}

// CreateAssignmentRequest is the payload for assignment creation.
type CreateAssignmentRequest struct {
	CourseID    uuid.UUID `json:"course_id" binding:"required"`
	Title       string    `json:"title" binding:"required,min=2,max=200"`
	Description string    `json:"description" binding:"omitempty,max=5000"`
	DueDate     time.Time `json:"due_date" binding:"required"`
}

// SubmitAssignmentRequest is the payload for a student submission.
type SubmitAssignmentRequest struct {
	Content string `json:"content" binding:"required,max=20000"`
}

// GradeSubmissionRequest is the payload a teacher sends to grade a submission.
type GradeSubmissionRequest struct {
	Grade    int    `json:"grade" binding:"min=0,max=100"`
	Feedback string `json:"feedback" binding:"omitempty,max=5000"`
}
