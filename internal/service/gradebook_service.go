package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/coursekit/lms-api/internal/models"
	appErrors "github.com/coursekit/lms-api/pkg/errors"
	"github.com/coursekit/lms-api/pkg/export"
)

const gradebookDefaultPageSize = 50

// GradebookService builds the instructor-facing course gradebook: one
// computed row per active enrollment, filtered, sorted and paginated in
// memory after a single batch read per source table.
type GradebookService struct {
	courses     courseReader
	enrollments enrollmentReader
	assignments assignmentReader
	weights     weightsResolver
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewGradebookService constructs GradebookService.
func NewGradebookService(courses courseReader, enrollments enrollmentReader, assignments assignmentReader, weights weightsResolver, logger *zap.Logger) *GradebookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradebookService{
		courses:     courses,
		enrollments: enrollments,
		assignments: assignments,
		weights:     weights,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// CourseGradebook computes the filtered, sorted, paginated gradebook for
// an instructor's own course. ClassAverage and the pagination total are
// taken over the filtered set, not the returned page.
func (s *GradebookService) CourseGradebook(ctx context.Context, courseID, instructorID string, query models.GradebookQuery) (*models.Gradebook, error) {
	if query.Limit <= 0 {
		query.Limit = gradebookDefaultPageSize
	}
	gradebook, filtered, err := s.filteredGradebook(ctx, courseID, instructorID, query)
	if err != nil {
		return nil, err
	}
	gradebook.Rows = paginateGradebookRows(filtered, query.Offset, query.Limit)
	gradebook.Pagination = models.Pagination{
		Offset:     query.Offset,
		Limit:      query.Limit,
		TotalCount: len(filtered),
	}
	return gradebook, nil
}

// filteredGradebook computes the filtered, sorted row set and the summary
// fields that derive from it. Pagination is left to the caller.
func (s *GradebookService) filteredGradebook(ctx context.Context, courseID, instructorID string, query models.GradebookQuery) (*models.Gradebook, []models.GradebookRow, error) {
	if err := validateGradebookQuery(&query); err != nil {
		return nil, nil, err
	}
	if _, err := s.courses.FindOwned(ctx, courseID, instructorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	weights, err := s.weights.Resolve(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.buildRows(ctx, courseID, *weights)
	if err != nil {
		return nil, nil, err
	}

	filtered := filterGradebookRows(rows, query)
	sortGradebookRows(filtered, query.SortBy, query.SortOrder)

	var sum float64
	for _, row := range filtered {
		sum += row.OverallGrade
	}
	classAverage := 0.0
	if len(filtered) > 0 {
		classAverage = Round2(sum / float64(len(filtered)))
	}
	return &models.Gradebook{
		CourseID:     courseID,
		Rows:         filtered,
		ClassAverage: classAverage,
		Weights:      *weights,
	}, filtered, nil
}

// ExportCSV renders the full filtered gradebook as CSV, ignoring pagination.
func (s *GradebookService) ExportCSV(ctx context.Context, courseID, instructorID string, query models.GradebookQuery) ([]byte, error) {
	gradebook, err := s.fullGradebook(ctx, courseID, instructorID, query)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(gradebookDataset(gradebook))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return data, nil
}

// ExportPDF renders the full filtered gradebook as a tabular PDF.
func (s *GradebookService) ExportPDF(ctx context.Context, courseID, instructorID string, query models.GradebookQuery) ([]byte, error) {
	gradebook, err := s.fullGradebook(ctx, courseID, instructorID, query)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Gradebook %s", courseID)
	data, err := s.pdf.Render(gradebookDataset(gradebook), title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	return data, nil
}

func (s *GradebookService) fullGradebook(ctx context.Context, courseID, instructorID string, query models.GradebookQuery) (*models.Gradebook, error) {
	gradebook, _, err := s.filteredGradebook(ctx, courseID, instructorID, query)
	return gradebook, err
}

// buildRows computes every student's row from batch reads. A failure on a
// single student degrades to a zero-grade row instead of failing the view.
func (s *GradebookService) buildRows(ctx context.Context, courseID string, weights models.GradeWeights) ([]models.GradebookRow, error) {
	enrollments, err := s.enrollments.ListActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	assignments, err := s.assignments.ListPublishedByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	submissionsByStudent, err := s.assignments.ListSubmissionsByCourse(ctx, courseID)
	if err != nil {
		s.logger.Warn("failed to list course submissions, rows degrade to zero grades",
			zap.String("course_id", courseID), zap.Error(err))
		submissionsByStudent = map[string][]models.Submission{}
	}

	rows := make([]models.GradebookRow, 0, len(enrollments))
	for _, enrollment := range enrollments {
		submissions := submissionsByStudent[enrollment.StudentID]
		categories := AggregateCategories(assignments, submissions)
		overall := OverallFromCategories(categories, weights)
		rows = append(rows, models.GradebookRow{
			StudentID:     enrollment.StudentID,
			StudentName:   enrollment.StudentName,
			StudentNumber: enrollment.StudentNumber,
			StudentEmail:  enrollment.StudentEmail,
			Section:       enrollment.Section,
			OverallGrade:  overall,
			LetterGrade:   LetterGrade(overall),
			Categories:    categories,
			AllSubmitted:  allSubmitted(assignments, submissions),
		})
	}
	return rows, nil
}

func allSubmitted(assignments []models.Assignment, submissions []models.Submission) bool {
	byAssignment := make(map[string]struct{}, len(submissions))
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = struct{}{}
	}
	for _, assignment := range assignments {
		if _, ok := byAssignment[assignment.ID]; !ok {
			return false
		}
	}
	return true
}

func validateGradebookQuery(query *models.GradebookQuery) error {
	if query.SortBy == "" {
		query.SortBy = models.SortByName
	}
	if !query.SortBy.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported sort key %q", query.SortBy))
	}
	switch strings.ToLower(query.SortOrder) {
	case "":
		query.SortOrder = "asc"
	case "asc", "desc":
		query.SortOrder = strings.ToLower(query.SortOrder)
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported sort order %q", query.SortOrder))
	}
	if query.Completeness != "" && query.Completeness != models.CompletenessAll && query.Completeness != models.CompletenessHasMissing {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported completeness filter %q", query.Completeness))
	}
	if query.MinGrade != nil && query.MaxGrade != nil && *query.MinGrade > *query.MaxGrade {
		return appErrors.Clone(appErrors.ErrValidation, "min_grade cannot exceed max_grade")
	}
	if query.Offset < 0 {
		query.Offset = 0
	}
	if query.Limit < 0 {
		query.Limit = 0
	}
	return nil
}

func filterGradebookRows(rows []models.GradebookRow, query models.GradebookQuery) []models.GradebookRow {
	filtered := make([]models.GradebookRow, 0, len(rows))
	for _, row := range rows {
		if query.MinGrade != nil && row.OverallGrade < *query.MinGrade {
			continue
		}
		if query.MaxGrade != nil && row.OverallGrade > *query.MaxGrade {
			continue
		}
		if query.Section != "" && !strings.EqualFold(row.Section, query.Section) {
			continue
		}
		if query.Completeness == models.CompletenessAll && !row.AllSubmitted {
			continue
		}
		if query.Completeness == models.CompletenessHasMissing && row.AllSubmitted {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// sortGradebookRows orders rows by the requested key with the student
// name as a stable tie-breaker.
func sortGradebookRows(rows []models.GradebookRow, key models.GradebookSortKey, order string) {
	less := func(a, b models.GradebookRow) bool {
		switch key {
		case models.SortByStudentNumber:
			return a.StudentNumber < b.StudentNumber
		case models.SortByEmail:
			return a.StudentEmail < b.StudentEmail
		case models.SortByOverallGrade:
			return a.OverallGrade < b.OverallGrade
		case models.SortByAssignmentGrade:
			return a.Categories.Assignment.Average < b.Categories.Assignment.Average
		case models.SortByActivityGrade:
			return a.Categories.Activity.Average < b.Categories.Activity.Average
		case models.SortByExamGrade:
			return a.Categories.Exam.Average < b.Categories.Exam.Average
		default:
			return strings.ToLower(a.StudentName) < strings.ToLower(b.StudentName)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if order == "desc" {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return strings.ToLower(a.StudentName) < strings.ToLower(b.StudentName)
	})
}

func paginateGradebookRows(rows []models.GradebookRow, offset, limit int) []models.GradebookRow {
	if offset >= len(rows) {
		return []models.GradebookRow{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func gradebookDataset(gradebook *models.Gradebook) export.Dataset {
	headers := []string{"Student Number", "Name", "Email", "Section", "Assignments", "Activities", "Exams", "Overall", "Letter", "All Submitted"}
	rows := make([]map[string]string, 0, len(gradebook.Rows))
	for _, row := range gradebook.Rows {
		rows = append(rows, map[string]string{
			"Student Number": row.StudentNumber,
			"Name":           row.StudentName,
			"Email":          row.StudentEmail,
			"Section":        row.Section,
			"Assignments":    fmt.Sprintf("%.2f", row.Categories.Assignment.Average),
			"Activities":     fmt.Sprintf("%.2f", row.Categories.Activity.Average),
			"Exams":          fmt.Sprintf("%.2f", row.Categories.Exam.Average),
			"Overall":        fmt.Sprintf("%.2f", row.OverallGrade),
			"Letter":         row.LetterGrade,
			"All Submitted":  fmt.Sprintf("%t", row.AllSubmitted),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
