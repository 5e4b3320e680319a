package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursekit/lms-api/internal/service"
	appErrors "github.com/coursekit/lms-api/pkg/errors"
	"github.com/coursekit/lms-api/pkg/response"
)

// RevokeCertificateRequest carries the mandatory revocation reason.
type RevokeCertificateRequest struct {
	Reason string `json:"reason"`
}

// CertificateHandler exposes certificate eligibility and lifecycle endpoints.
type CertificateHandler struct {
	certificates *service.CertificateService
}

// NewCertificateHandler constructs handler.
func NewCertificateHandler(certificates *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// Eligibility godoc
// @Summary Check certificate eligibility for a student
// @Tags Certificates
// @Produce json
// @Param id path string true "Course ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/students/{studentId}/certificate/eligibility [get]
func (h *CertificateHandler) Eligibility(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	eligibility, err := h.certificates.CheckEligibility(c.Request.Context(), c.Param("id"), c.Param("studentId"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eligibility, nil)
}

// Issue godoc
// @Summary Issue a certificate to an eligible student
// @Tags Certificates
// @Produce json
// @Param id path string true "Course ID"
// @Param studentId path string true "Student ID"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/students/{studentId}/certificate [post]
func (h *CertificateHandler) Issue(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	cert, err := h.certificates.Issue(c.Request.Context(), c.Param("id"), c.Param("studentId"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cert)
}

// Revoke godoc
// @Summary Revoke an issued certificate
// @Tags Certificates
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param studentId path string true "Student ID"
// @Param payload body RevokeCertificateRequest true "Revocation payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/students/{studentId}/certificate/revoke [post]
func (h *CertificateHandler) Revoke(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req RevokeCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cert, err := h.certificates.Revoke(c.Request.Context(), c.Param("id"), c.Param("studentId"), claims.UserID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cert, nil)
}

// EligibleStudents godoc
// @Summary List students currently eligible for a certificate
// @Tags Certificates
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/certificates/eligible-students [get]
func (h *CertificateHandler) EligibleStudents(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	report, err := h.certificates.EligibleStudents(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
