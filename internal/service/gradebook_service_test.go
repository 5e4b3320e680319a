package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursekit/lms-api/internal/models"
	appErrors "github.com/coursekit/lms-api/pkg/errors"
)

func gradebookFixture() (*stubAssignments, *GradebookService) {
	courses := &stubCourses{courses: map[string]*models.Course{
		"c1": {ID: "c1", InstructorID: "inst1", Section: "A"},
	}}
	enrollments := &stubEnrollments{roster: []models.EnrollmentDetail{
		{Enrollment: models.Enrollment{ID: "e1", StudentID: "stu1", CourseID: "c1", Status: models.EnrollmentStatusActive}, StudentName: "Ada Lovelace", StudentNumber: "1001", StudentEmail: "ada@example.edu", Section: "A"},
		{Enrollment: models.Enrollment{ID: "e2", StudentID: "stu2", CourseID: "c1", Status: models.EnrollmentStatusActive}, StudentName: "Grace Hopper", StudentNumber: "1002", StudentEmail: "grace@example.edu", Section: "A"},
		{Enrollment: models.Enrollment{ID: "e3", StudentID: "stu3", CourseID: "c1", Status: models.EnrollmentStatusActive}, StudentName: "Edsger Dijkstra", StudentNumber: "1003", StudentEmail: "edsger@example.edu", Section: "B"},
	}}
	assignments := &stubAssignments{
		assignments: []models.Assignment{
			{ID: "a1", CourseID: "c1", Category: models.CategoryAssignment, Points: 100, IsPublished: true},
			{ID: "a2", CourseID: "c1", Category: models.CategoryExam, Points: 100, IsPublished: true},
		},
		submissions: map[string][]models.Submission{
			"stu1": {
				{ID: "s1", AssignmentID: "a1", StudentID: "stu1", Score: 90, MaxScore: 100},
				{ID: "s2", AssignmentID: "a2", StudentID: "stu1", Score: 90, MaxScore: 100},
			},
			"stu2": {
				{ID: "s3", AssignmentID: "a1", StudentID: "stu2", Score: 60, MaxScore: 100},
			},
		},
	}
	weights := &stubWeightsResolver{weights: models.GradeWeights{CourseID: "c1", AssignmentWeight: 40, ActivityWeight: 30, ExamWeight: 30}}
	svc := NewGradebookService(courses, enrollments, assignments, weights, zap.NewNop())
	return assignments, svc
}

func TestCourseGradebookRows(t *testing.T) {
	_, svc := gradebookFixture()

	gradebook, err := svc.CourseGradebook(context.Background(), "c1", "inst1", models.GradebookQuery{})
	require.NoError(t, err)
	require.Len(t, gradebook.Rows, 3)

	// default sort is by name ascending
	assert.Equal(t, "Ada Lovelace", gradebook.Rows[0].StudentName)
	assert.Equal(t, "Edsger Dijkstra", gradebook.Rows[1].StudentName)

	byID := make(map[string]models.GradebookRow)
	for _, row := range gradebook.Rows {
		byID[row.StudentID] = row
	}
	// stu1: assignment 90 w40 + exam 90 w30, activity has no content -> renormalized to 90
	assert.Equal(t, 90.0, byID["stu1"].OverallGrade)
	assert.True(t, byID["stu1"].AllSubmitted)
	// stu2: assignment 60 w40 + exam 0 w30 -> 24/0.7 = 34.29
	assert.Equal(t, 34.29, byID["stu2"].OverallGrade)
	assert.False(t, byID["stu2"].AllSubmitted)
	assert.Equal(t, 0.0, byID["stu3"].OverallGrade)

	assert.Equal(t, 3, gradebook.Pagination.TotalCount)
	// mean of 90, 34.29 and 0
	assert.Equal(t, 41.43, gradebook.ClassAverage)
}

func TestCourseGradebookOwnership(t *testing.T) {
	_, svc := gradebookFixture()

	_, err := svc.CourseGradebook(context.Background(), "c1", "someone-else", models.GradebookQuery{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestCourseGradebookFilters(t *testing.T) {
	_, svc := gradebookFixture()

	gradebook, err := svc.CourseGradebook(context.Background(), "c1", "inst1", models.GradebookQuery{MinGrade: floatPtr(50)})
	require.NoError(t, err)
	require.Len(t, gradebook.Rows, 1)
	assert.Equal(t, 1, gradebook.Pagination.TotalCount)
	// class average follows the filtered set
	assert.Equal(t, 90.0, gradebook.ClassAverage)

	gradebook, err = svc.CourseGradebook(context.Background(), "c1", "inst1", models.GradebookQuery{Section: "B"})
	require.NoError(t, err)
	require.Len(t, gradebook.Rows, 1)
	assert.Equal(t, "stu3", gradebook.Rows[0].StudentID)

	gradebook, err = svc.CourseGradebook(context.Background(), "c1", "inst1", models.GradebookQuery{Completeness: models.CompletenessHasMissing})
	require.NoError(t, err)
	assert.Len(t, gradebook.Rows, 2)
}

func TestCourseGradebookSorting(t *testing.T) {
	_, svc := gradebookFixture()

	gradebook, err := svc.CourseGradebook(context.Background(), "c1", "inst1", models.GradebookQuery{
		SortBy: models.SortByOverallGrade, SortOrder: "desc",
	})
	require.NoError(t, err)
	require.Len(t, gradebook.Rows, 3)
	assert.Equal(t, "stu1", gradebook.Rows[0].StudentID)
	assert.Equal(t, "stu2", gradebook.Rows[1].StudentID)
	assert.Equal(t, "stu3", gradebook.Rows[2].StudentID)
}

func TestCourseGradebookPagination(t *testing.T) {
	_, svc := gradebookFixture()

	gradebook, err := svc.CourseGradebook(context.Background(), "c1", "inst1", models.GradebookQuery{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, gradebook.Rows, 1)
	assert.Equal(t, 3, gradebook.Pagination.TotalCount)
	assert.Equal(t, 1, gradebook.Pagination.Offset)

	gradebook, err = svc.CourseGradebook(context.Background(), "c1", "inst1", models.GradebookQuery{Offset: 10, Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, gradebook.Rows)
	assert.Equal(t, 3, gradebook.Pagination.TotalCount)
}

func TestCourseGradebookRejectsBadQuery(t *testing.T) {
	_, svc := gradebookFixture()

	_, err := svc.CourseGradebook(context.Background(), "c1", "inst1", models.GradebookQuery{SortBy: "shoe_size"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = svc.CourseGradebook(context.Background(), "c1", "inst1", models.GradebookQuery{MinGrade: floatPtr(80), MaxGrade: floatPtr(20)})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestExportCSVIncludesAllFilteredRows(t *testing.T) {
	_, svc := gradebookFixture()

	data, err := svc.ExportCSV(context.Background(), "c1", "inst1", models.GradebookQuery{Limit: 1})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// header plus every student, pagination ignored for exports
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Student Number")
	assert.Contains(t, string(data), "Ada Lovelace")
	assert.Contains(t, string(data), "Edsger Dijkstra")
}

func TestExportPDFRenders(t *testing.T) {
	_, svc := gradebookFixture()

	data, err := svc.ExportPDF(context.Background(), "c1", "inst1", models.GradebookQuery{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
