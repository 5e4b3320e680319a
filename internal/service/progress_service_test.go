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

func progressFixture() (*stubProgressRepo, *stubEnrollments, *ProgressService) {
	lessons := []models.Lesson{
		{ID: "l1", ModuleID: "m1", CourseID: "c1", Title: "Intro", Position: 1},
		{ID: "l2", ModuleID: "m1", CourseID: "c1", Title: "Basics", Position: 2},
		{ID: "l3", ModuleID: "m2", CourseID: "c1", Title: "Advanced", Position: 1},
		{ID: "l4", ModuleID: "m2", CourseID: "c1", Title: "Wrap up", Position: 2},
	}
	courses := &stubCourses{
		courses: map[string]*models.Course{"c1": {ID: "c1", InstructorID: "inst1"}},
		structures: map[string]*models.CourseStructure{"c1": {
			CourseID: "c1",
			Modules: []models.CourseModule{
				{ID: "m1", CourseID: "c1", Title: "Module One", Position: 1},
				{ID: "m2", CourseID: "c1", Title: "Module Two", Position: 2},
			},
			Lessons: lessons,
		}},
		lessons: map[string]*models.Lesson{},
	}
	for i := range lessons {
		courses.lessons[lessons[i].ID] = &lessons[i]
	}
	enrollments := &stubEnrollments{enrollments: map[string]*models.Enrollment{
		enrollmentKey("stu1", "c1"): {ID: "e1", StudentID: "stu1", CourseID: "c1", Status: models.EnrollmentStatusActive},
	}}
	progressRepo := &stubProgressRepo{}
	svc := NewProgressService(courses, enrollments, progressRepo, nil, validator.New(), zap.NewNop())
	return progressRepo, enrollments, svc
}

func TestCompleteFirstLessonOfModule(t *testing.T) {
	repo, _, svc := progressFixture()

	result, err := svc.CompleteLesson(context.Background(), "stu1", "l1")
	require.NoError(t, err)
	assert.True(t, result.Completed)
	require.NotNil(t, result.NextLessonID)
	assert.Equal(t, "l2", *result.NextLessonID)
	assert.True(t, result.NextLessonUnlocked)

	row := repo.rows["stu1"]["l1"]
	assert.True(t, row.IsCompleted)
	assert.Equal(t, 100, row.CompletionPercentage)
}

func TestCompleteLessonBlockedByPreviousLesson(t *testing.T) {
	_, _, svc := progressFixture()

	_, err := svc.CompleteLesson(context.Background(), "stu1", "l2")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPreconditionFailed))
}

func TestCompleteFirstLessonOfLaterModule(t *testing.T) {
	_, _, svc := progressFixture()

	// unlocking is per module, so m2's first lesson does not wait for m1
	result, err := svc.CompleteLesson(context.Background(), "stu1", "l3")
	require.NoError(t, err)
	assert.True(t, result.Completed)
}

func TestCompleteLessonKeepsOriginalCompletedAt(t *testing.T) {
	repo, _, svc := progressFixture()

	_, err := svc.CompleteLesson(context.Background(), "stu1", "l1")
	require.NoError(t, err)
	first := repo.rows["stu1"]["l1"].CompletedAt
	require.NotNil(t, first)

	time.Sleep(5 * time.Millisecond)
	_, err = svc.CompleteLesson(context.Background(), "stu1", "l1")
	require.NoError(t, err)
	assert.Equal(t, *first, *repo.rows["stu1"]["l1"].CompletedAt)
}

func TestUpdateProgressPartial(t *testing.T) {
	repo, _, svc := progressFixture()

	row, err := svc.UpdateProgress(context.Background(), "stu1", "l1", UpdateLessonProgressRequest{CompletionPercentage: 40})
	require.NoError(t, err)
	assert.Equal(t, 40, row.CompletionPercentage)
	assert.False(t, row.IsCompleted)
	assert.False(t, repo.rows["stu1"]["l1"].IsCompleted)
}

func TestUpdateProgressNeverRegressesCompletion(t *testing.T) {
	repo, _, svc := progressFixture()

	_, err := svc.CompleteLesson(context.Background(), "stu1", "l1")
	require.NoError(t, err)

	row, err := svc.UpdateProgress(context.Background(), "stu1", "l1", UpdateLessonProgressRequest{CompletionPercentage: 20})
	require.NoError(t, err)
	assert.True(t, row.IsCompleted)
	assert.Equal(t, 100, row.CompletionPercentage)
	assert.True(t, repo.rows["stu1"]["l1"].IsCompleted)
}

func TestUpdateProgressFullRoutesThroughCompletionGate(t *testing.T) {
	_, _, svc := progressFixture()

	_, err := svc.UpdateProgress(context.Background(), "stu1", "l2", UpdateLessonProgressRequest{CompletionPercentage: 100})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPreconditionFailed))

	row, err := svc.UpdateProgress(context.Background(), "stu1", "l1", UpdateLessonProgressRequest{CompletionPercentage: 100})
	require.NoError(t, err)
	assert.True(t, row.IsCompleted)
}

func TestUpdateProgressValidatesPercentage(t *testing.T) {
	_, _, svc := progressFixture()

	_, err := svc.UpdateProgress(context.Background(), "stu1", "l1", UpdateLessonProgressRequest{CompletionPercentage: -5})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestCompleteLessonRequiresActiveEnrollment(t *testing.T) {
	_, enrollments, svc := progressFixture()

	_, err := svc.CompleteLesson(context.Background(), "stranger", "l1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	enrollments.enrollments[enrollmentKey("dropped", "c1")] = &models.Enrollment{
		ID: "e2", StudentID: "dropped", CourseID: "c1", Status: models.EnrollmentStatusDropped,
	}
	_, err = svc.CompleteLesson(context.Background(), "dropped", "l1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestCourseProgressDerivesStates(t *testing.T) {
	_, _, svc := progressFixture()

	_, err := svc.CompleteLesson(context.Background(), "stu1", "l1")
	require.NoError(t, err)

	view, err := svc.CourseProgress(context.Background(), "stu1", "c1")
	require.NoError(t, err)
	require.Len(t, view.Modules, 2)

	moduleOne := view.Modules[0]
	assert.Equal(t, models.LessonStateCompleted, moduleOne.Lessons[0].State)
	assert.Equal(t, models.LessonStateUnlocked, moduleOne.Lessons[1].State)
	assert.Equal(t, 50, moduleOne.CompletionPercentage)

	moduleTwo := view.Modules[1]
	assert.Equal(t, models.LessonStateUnlocked, moduleTwo.Lessons[0].State)
	assert.Equal(t, models.LessonStateLocked, moduleTwo.Lessons[1].State)

	assert.Equal(t, 1, view.CompletedLessons)
	assert.Equal(t, 4, view.TotalLessons)
	assert.Equal(t, 25, view.CompletionPercentage)
}

func TestCourseProgressUnknownCourse(t *testing.T) {
	_, _, svc := progressFixture()

	_, err := svc.CourseProgress(context.Background(), "stu1", "missing")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
