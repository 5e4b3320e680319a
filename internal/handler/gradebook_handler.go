package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coursekit/lms-api/internal/models"
	"github.com/coursekit/lms-api/internal/service"
	appErrors "github.com/coursekit/lms-api/pkg/errors"
	"github.com/coursekit/lms-api/pkg/response"
)

// GradebookHandler exposes the instructor gradebook endpoints.
type GradebookHandler struct {
	gradebook      *service.GradebookService
	exportsEnabled bool
}

// NewGradebookHandler constructs handler.
func NewGradebookHandler(gradebook *service.GradebookService, exportsEnabled bool) *GradebookHandler {
	return &GradebookHandler{gradebook: gradebook, exportsEnabled: exportsEnabled}
}

// Course godoc
// @Summary Filtered, sorted, paginated course gradebook
// @Tags Gradebook
// @Produce json
// @Param id path string true "Course ID"
// @Param minGrade query number false "Minimum overall grade"
// @Param maxGrade query number false "Maximum overall grade"
// @Param section query string false "Section filter"
// @Param completeness query string false "all_submitted or has_missing"
// @Param sortBy query string false "Sort key"
// @Param sortOrder query string false "asc or desc"
// @Param offset query integer false "Page offset"
// @Param limit query integer false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/gradebook [get]
func (h *GradebookHandler) Course(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query, err := gradebookQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	gradebook, err := h.gradebook.CourseGradebook(c.Request.Context(), c.Param("id"), claims.UserID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gradebook, &gradebook.Pagination)
}

// Export godoc
// @Summary Export the filtered gradebook as CSV or PDF
// @Tags Gradebook
// @Produce text/csv
// @Param id path string true "Course ID"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} file
// @Router /courses/{id}/gradebook/export [get]
func (h *GradebookHandler) Export(c *gin.Context) {
	if !h.exportsEnabled {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "gradebook exports are disabled"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query, err := gradebookQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	courseID := c.Param("id")
	filename := fmt.Sprintf("gradebook-%s-%s", courseID, time.Now().UTC().Format("20060102"))

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := h.gradebook.ExportCSV(c.Request.Context(), courseID, claims.UserID, query)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", data)
	case "pdf":
		data, err := h.gradebook.ExportPDF(c.Request.Context(), courseID, claims.UserID, query)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

func gradebookQueryFromRequest(c *gin.Context) (models.GradebookQuery, error) {
	query := models.GradebookQuery{
		Section:      c.Query("section"),
		Completeness: models.SubmissionCompleteness(c.Query("completeness")),
		SortBy:       models.GradebookSortKey(c.Query("sortBy")),
		SortOrder:    c.Query("sortOrder"),
	}
	if raw := c.Query("minGrade"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "minGrade must be a number")
		}
		query.MinGrade = &value
	}
	if raw := c.Query("maxGrade"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "maxGrade must be a number")
		}
		query.MaxGrade = &value
	}
	if raw := c.Query("offset"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return query, appErrors.Clone(appErrors.ErrValidation, "offset must be a non-negative integer")
		}
		query.Offset = value
	}
	if raw := c.Query("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return query, appErrors.Clone(appErrors.ErrValidation, "limit must be a non-negative integer")
		}
		query.Limit = value
	}
	return query, nil
}
