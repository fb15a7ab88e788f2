package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/middleware"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/guptas/lms-backend/internal/repository"
	"github.com/guptas/lms-backend/internal/response"
	"github.com/guptas/lms-backend/internal/service"
)

// AdminHandler handles teacher approval and user administration.
type AdminHandler struct {
	userService         *service.UserService
	verificationService *service.VerificationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService *service.UserService, verificationService *service.VerificationService) *AdminHandler {
	return &AdminHandler{
		userService:         userService,
		verificationService: verificationService,
	}
}

// ListPendingTeachers godoc
// GET /api/v1/admin/pending-teachers
// Returns teacher accounts awaiting approval. Each entry carries the
// derived lifecycle state so admins can tell a fresh request
// (pending_approval) from one whose code is out but unredeemed
// (awaiting_redemption).
func (h *AdminHandler) ListPendingTeachers(c *gin.Context) {
	teachers, err := h.userService.ListPendingTeachers(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	list := make([]gin.H, 0, len(teachers))
	for i := range teachers {
		t := &teachers[i]
		state, err := h.verificationService.TeacherState(c.Request.Context(), t)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		list = append(list, gin.H{
			"id":         t.ID,
			"name":       t.Name,
			"email":      t.Email,
			"status":     t.Status,
			"state":      state,
			"created_at": t.CreatedAt,
		})
	}

	response.Success(c, http.StatusOK, gin.H{"teachers": list})
}

// ApproveTeacher godoc
// POST /api/v1/admin/approve-teacher/:teacherId
// Approves a pending teacher and issues a fresh access code. The plaintext
// code is returned to the admin and mailed to the teacher out-of-band.
func (h *AdminHandler) ApproveTeacher(c *gin.Context) {
	teacherID, err := uuid.Parse(c.Param("teacherId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	code, err := h.verificationService.ApproveTeacher(c.Request.Context(), claims.UserID, teacherID)
	if err != nil {
		if errors.Is(err, service.ErrTeacherNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Teacher approved. Access code generated.",
		"accessCode": model.IssuedAccessCode{
			Code:      code.Code,
			Email:     code.Email,
			ExpiresAt: code.ExpiresAt,
		},
	})
}

// RejectTeacher godoc
// POST /api/v1/admin/reject-teacher/:teacherId
// Rejects a teacher request by deactivating the account.
func (h *AdminHandler) RejectTeacher(c *gin.Context) {
	teacherID, err := uuid.Parse(c.Param("teacherId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	teacher, err := h.userService.RejectTeacher(c.Request.Context(), teacherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Teacher request rejected",
		"teacher": gin.H{
			"id":     teacher.ID,
			"name":   teacher.Name,
			"email":  teacher.Email,
			"status": teacher.Status,
		},
	})
}

// ListUsers godoc
// GET /api/v1/admin/users
// Returns every user account (password hashes never leave the model).
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	list := make([]gin.H, 0, len(users))
	for i := range users {
		list = append(list, userPayload(&users[i]))
	}

	response.Success(c, http.StatusOK, gin.H{"users": list})
}
