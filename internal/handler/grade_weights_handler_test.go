package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursekit/lms-api/internal/middleware"
	"github.com/coursekit/lms-api/internal/models"
)

func TestGradeWeightsHandlerUpdateRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradeWeightsHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/courses/c1/grade-weights", bytes.NewReader([]byte(`{}`)))
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	handler.Update(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGradeWeightsHandlerUpdateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradeWeightsHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/courses/c1/grade-weights", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "inst1", Role: models.RoleInstructor})

	handler.Update(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
