package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/guptas/lms-backend/internal/repository"
	"github.com/guptas/lms-backend/internal/response"
	"github.com/guptas/lms-backend/internal/service"
	"github.com/guptas/lms-backend/internal/validator"
)

// CertificateHandler handles certificate issuance.
type CertificateHandler struct {
	certificateService *service.CertificateService
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(certificateService *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

// Issue godoc
// POST /api/v1/certificates
// Teachers and admins issue course-completion certificates.
func (h *CertificateHandler) Issue(c *gin.Context) {
	var req model.IssueCertificateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cert, err := h.certificateService.Issue(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, repository.ErrCertificateExists):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"certificate": cert})
}
