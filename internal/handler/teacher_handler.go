package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guptas/lms-backend/internal/middleware"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/guptas/lms-backend/internal/response"
	"github.com/guptas/lms-backend/internal/service"
	"github.com/guptas/lms-backend/internal/validator"
)

// TeacherHandler handles teacher self-verification.
type TeacherHandler struct {
	verificationService *service.VerificationService
}

// NewTeacherHandler creates a new TeacherHandler.
func NewTeacherHandler(verificationService *service.VerificationService) *TeacherHandler {
	return &TeacherHandler{verificationService: verificationService}
}

// VerifyCode godoc
// POST /api/v1/teachers/verify-code
// Redeems the submitted access code for the calling teacher. The code is
// single-use: a second call with the same code fails with the same generic
// error as a wrong or expired code.
func (h *TeacherHandler) VerifyCode(c *gin.Context) {
	var req model.VerifyCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.verificationService.RedeemCode(c.Request.Context(), claims.UserID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrExpiredCode):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidOrExpiredCode)
		case errors.Is(err, service.ErrTooManyAttempts):
			response.Fail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
		case errors.Is(err, service.ErrUserVanished):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Teacher verified successfully",
		"user":    userPayload(user),
	})
}
