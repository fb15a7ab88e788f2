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
	"github.com/guptas/lms-backend/internal/validator"
)

// UserHandler handles profile endpoints.
type UserHandler struct {
	userService        *service.UserService
	courseService      *service.CourseService
	certificateService *service.CertificateService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, courseService *service.CourseService, certificateService *service.CertificateService) *UserHandler {
	return &UserHandler{
		userService:        userService,
		courseService:      courseService,
		certificateService: certificateService,
	}
}

// selfOrAdmin parses the :id path param and admits only the user themself
// or an admin. Returns uuid.Nil after writing the error response.
func selfOrAdmin(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return uuid.Nil
	}
	if claims.Role != model.RoleAdmin && claims.UserID != id {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return uuid.Nil
	}
	return id
}

// GetUser godoc
// GET /api/v1/users/:id
// Admins may read any profile; everyone else only their own.
func (h *UserHandler) GetUser(c *gin.Context) {
	id := selfOrAdmin(c)
	if id == uuid.Nil {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": userPayload(user)})
}

// UpdateUser godoc
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := selfOrAdmin(c)
	if id == uuid.Nil {
		return
	}

	var req model.UpdateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), id, req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrEmailTaken):
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    userPayload(user),
	})
}

// GetUserCourses godoc
// GET /api/v1/users/:id/courses
// Returns the courses a student is enrolled in. Students only, self only.
func (h *UserHandler) GetUserCourses(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	if claims.Role != model.RoleStudent || claims.UserID != id {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	courses, err := h.courseService.ListEnrolled(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// GetUserStats godoc
// GET /api/v1/users/:id/stats
// Role-dependent activity counts, for the user themself or an admin.
func (h *UserHandler) GetUserStats(c *gin.Context) {
	id := selfOrAdmin(c)
	if id == uuid.Nil {
		return
	}

	stats, err := h.userService.GetStats(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// GetUserCertificates godoc
// GET /api/v1/users/:id/certificates
func (h *UserHandler) GetUserCertificates(c *gin.Context) {
	id := selfOrAdmin(c)
	if id == uuid.Nil {
		return
	}

	certs, err := h.certificateService.ListByStudent(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if certs == nil {
		certs = []model.Certificate{}
	}

	response.Success(c, http.StatusOK, gin.H{"certificates": certs})
}
