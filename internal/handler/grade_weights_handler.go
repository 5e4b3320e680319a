package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursekit/lms-api/internal/service"
	appErrors "github.com/coursekit/lms-api/pkg/errors"
	"github.com/coursekit/lms-api/pkg/response"
)

// GradeWeightsHandler exposes grade weight configuration endpoints.
type GradeWeightsHandler struct {
	weights *service.GradeWeightsService
}

// NewGradeWeightsHandler constructs handler.
func NewGradeWeightsHandler(weights *service.GradeWeightsService) *GradeWeightsHandler {
	return &GradeWeightsHandler{weights: weights}
}

// Get godoc
// @Summary Get course grade weights
// @Tags Grade Weights
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/grade-weights [get]
func (h *GradeWeightsHandler) Get(c *gin.Context) {
	weights, err := h.weights.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights, nil)
}

// Update godoc
// @Summary Update course grade weights
// @Tags Grade Weights
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.UpdateGradeWeightsRequest true "Weights payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/grade-weights [put]
func (h *GradeWeightsHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateGradeWeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	weights, err := h.weights.Update(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights, nil)
}
