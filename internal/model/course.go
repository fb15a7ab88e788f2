package model

import (
	"time"

	"github.com/google/uuid"
)

// CourseStatus is the publication state of a course.
type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

// Course represents a teacher-owned course with video content.
type Course struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	TeacherID   uuid.UUID    `json:"teacher_id"`
	VideoURL    string       `json:"video_url"`
	NotesURL    string       `json:"notes_url,omitempty"`
	Status      CourseStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreateCourseRequest is the payload for course creation. New courses
// always start as drafts.
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	VideoURL    string `json:"video_url" binding:"required,url,max=2000"`
	NotesURL    string `json:"notes_url" binding:"omitempty,url,max=2000"`
}

// UpdateCourseRequest is the payload for course updates, including
// status transitions (draft → published → archived).
type UpdateCourseRequest struct {
	Title       string       `json:"title" binding:"required,min=2,max=200"`
	Description string       `json:"description" binding:"omitempty,max=5000"`
	VideoURL    string       `json:"video_url" binding:"required,url,max=2000"`
	NotesURL    string       `json:"notes_url" binding:"omitempty,url,max=2000"`
	Status      CourseStatus `json:"status" binding:"required,oneof=draft published archived"`
}
