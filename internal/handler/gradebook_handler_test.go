package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursekit/lms-api/internal/middleware"
	"github.com/coursekit/lms-api/internal/models"
)

func TestGradebookHandlerExportDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradebookHandler(nil, false)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/c1/gradebook/export", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "inst1", Role: models.RoleInstructor})

	handler.Export(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGradebookHandlerRejectsBadQueryValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradebookHandler(nil, true)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/c1/gradebook?minGrade=abc", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "inst1", Role: models.RoleInstructor})

	handler.Course(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradebookHandlerRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradebookHandler(nil, true)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/c1/gradebook", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	handler.Course(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
