package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursekit/lms-api/internal/models"
	appErrors "github.com/coursekit/lms-api/pkg/errors"
)

func weightsFixture() (*stubWeightsRepo, *stubCourses, *GradeWeightsService) {
	repo := &stubWeightsRepo{stored: map[string]*models.GradeWeights{}}
	courses := &stubCourses{courses: map[string]*models.Course{
		"c1": {ID: "c1", InstructorID: "inst1"},
	}}
	defaults := models.GradeWeights{AssignmentWeight: 40, ActivityWeight: 30, ExamWeight: 30}
	svc := NewGradeWeightsService(repo, courses, defaults, validator.New(), zap.NewNop())
	return repo, courses, svc
}

func TestResolveCreatesDefaultWeights(t *testing.T) {
	repo, _, svc := weightsFixture()

	weights, err := svc.Resolve(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 40, weights.AssignmentWeight)
	assert.Equal(t, 30, weights.ActivityWeight)
	assert.Equal(t, 30, weights.ExamWeight)
	assert.Equal(t, 1, repo.upserts)

	// second read reuses the stored row
	_, err = svc.Resolve(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.upserts)
}

func TestUpdateWeightsRejectsBadSum(t *testing.T) {
	repo, _, svc := weightsFixture()
	repo.stored["c1"] = &models.GradeWeights{ID: "w1", CourseID: "c1", AssignmentWeight: 40, ActivityWeight: 30, ExamWeight: 30}

	_, err := svc.Update(context.Background(), "c1", "inst1", UpdateGradeWeightsRequest{
		AssignmentWeight: 50, ActivityWeight: 30, ExamWeight: 30,
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidWeights))

	// prior weights stay untouched
	assert.Equal(t, 40, repo.stored["c1"].AssignmentWeight)
}

func TestUpdateWeightsOwnership(t *testing.T) {
	_, _, svc := weightsFixture()

	_, err := svc.Update(context.Background(), "c1", "someone-else", UpdateGradeWeightsRequest{
		AssignmentWeight: 50, ActivityWeight: 25, ExamWeight: 25,
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestUpdateWeightsPreservesIdentity(t *testing.T) {
	repo, _, svc := weightsFixture()
	created := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	repo.stored["c1"] = &models.GradeWeights{ID: "w1", CourseID: "c1", AssignmentWeight: 40, ActivityWeight: 30, ExamWeight: 30, CreatedAt: created}

	weights, err := svc.Update(context.Background(), "c1", "inst1", UpdateGradeWeightsRequest{
		AssignmentWeight: 20, ActivityWeight: 30, ExamWeight: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "w1", weights.ID)
	assert.Equal(t, created, weights.CreatedAt)
	assert.Equal(t, 50, repo.stored["c1"].ExamWeight)
}

func TestUpdateWeightsValidatesRange(t *testing.T) {
	_, _, svc := weightsFixture()

	_, err := svc.Update(context.Background(), "c1", "inst1", UpdateGradeWeightsRequest{
		AssignmentWeight: 120, ActivityWeight: -10, ExamWeight: -10,
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
