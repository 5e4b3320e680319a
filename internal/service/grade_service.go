package service

import (
	"context"
	"database/sql"
	"math"

	"go.uber.org/zap"

	"github.com/coursekit/lms-api/internal/models"
	appErrors "github.com/coursekit/lms-api/pkg/errors"
)

type assignmentReader interface {
	ListPublishedByCourse(ctx context.Context, courseID string) ([]models.Assignment, error)
	ListSubmissionsByStudent(ctx context.Context, courseID, studentID string) ([]models.Submission, error)
	ListSubmissionsByCourse(ctx context.Context, courseID string) (map[string][]models.Submission, error)
}

type weightsResolver interface {
	Resolve(ctx context.Context, courseID string) (*models.GradeWeights, error)
}

// GradeService computes category aggregates, the weighted overall grade
// and the letter grade for a student in a course. Everything here is a
// pure read recomputed from source data on each call.
type GradeService struct {
	assignments assignmentReader
	courses     courseReader
	weights     weightsResolver
	logger      *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(assignments assignmentReader, courses courseReader, weights weightsResolver, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{assignments: assignments, courses: courses, weights: weights, logger: logger}
}

// CategoryGrades aggregates earned vs possible points per category.
func (s *GradeService) CategoryGrades(ctx context.Context, courseID, studentID string) (*models.CategoryGrades, error) {
	assignments, submissions, err := s.loadSources(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}
	categories := AggregateCategories(assignments, submissions)
	return &categories, nil
}

// OverallGrade combines category averages under the course weights into
// the full GradeSummary.
func (s *GradeService) OverallGrade(ctx context.Context, courseID, studentID string) (*models.GradeSummary, error) {
	assignments, submissions, err := s.loadSources(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}
	weights, err := s.weights.Resolve(ctx, courseID)
	if err != nil {
		return nil, err
	}
	categories := AggregateCategories(assignments, submissions)
	overall := OverallFromCategories(categories, *weights)
	return &models.GradeSummary{
		CourseID:     courseID,
		StudentID:    studentID,
		OverallGrade: overall,
		LetterGrade:  LetterGrade(overall),
		Categories:   categories,
		Weights:      *weights,
	}, nil
}

// StudentGradebook returns the summary plus a per-assignment breakdown.
func (s *GradeService) StudentGradebook(ctx context.Context, courseID, studentID string) (*models.StudentGradebook, error) {
	summary, err := s.OverallGrade(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListPublishedByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	submissions, err := s.assignments.ListSubmissionsByStudent(ctx, courseID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	byAssignment := make(map[string]models.Submission, len(submissions))
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = submission
	}
	rows := make([]models.AssignmentGradeRow, 0, len(assignments))
	for _, assignment := range assignments {
		row := models.AssignmentGradeRow{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			Category:     assignment.Category,
			Points:       assignment.Points,
			DueDate:      assignment.DueDate,
		}
		if submission, ok := byAssignment[assignment.ID]; ok {
			score := submission.Score
			maxScore := submission.MaxScore
			submittedAt := submission.SubmittedAt
			row.Score = &score
			row.MaxScore = &maxScore
			row.SubmittedAt = &submittedAt
			if maxScore > 0 {
				pct := Round2(score / maxScore * 100)
				row.Percentage = &pct
			}
		}
		rows = append(rows, row)
	}
	return &models.StudentGradebook{Summary: *summary, Assignments: rows}, nil
}

// InstructorStudentGradebook is the instructor view of one student's
// gradebook. A course the instructor does not own reads as not found.
func (s *GradeService) InstructorStudentGradebook(ctx context.Context, courseID, studentID, instructorID string) (*models.StudentGradebook, error) {
	if _, err := s.courses.FindOwned(ctx, courseID, instructorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return s.StudentGradebook(ctx, courseID, studentID)
}

func (s *GradeService) loadSources(ctx context.Context, courseID, studentID string) ([]models.Assignment, []models.Submission, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	assignments, err := s.assignments.ListPublishedByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	submissions, err := s.assignments.ListSubmissionsByStudent(ctx, courseID, studentID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return assignments, submissions, nil
}

// AggregateCategories sums earned vs possible points per category across
// published assignments. A category with no submissions averages exactly
// zero, never NaN.
func AggregateCategories(assignments []models.Assignment, submissions []models.Submission) models.CategoryGrades {
	byAssignment := make(map[string]models.Submission, len(submissions))
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = submission
	}
	var categories models.CategoryGrades
	for _, category := range models.Categories() {
		var grade models.CategoryGrade
		var earned, possible float64
		for _, assignment := range assignments {
			if assignment.Category != category {
				continue
			}
			grade.Total++
			submission, ok := byAssignment[assignment.ID]
			if !ok {
				continue
			}
			grade.Submitted++
			earned += submission.Score
			possible += submission.MaxScore
		}
		if possible > 0 {
			grade.Average = Round2(earned / possible * 100)
		}
		switch category {
		case models.CategoryAssignment:
			categories.Assignment = grade
		case models.CategoryActivity:
			categories.Activity = grade
		case models.CategoryExam:
			categories.Exam = grade
		}
	}
	return categories
}

// OverallFromCategories combines category averages using the configured
// weights. Categories without content contribute nothing and their weight
// is excluded; when the exercised weight is strictly between 0 and 100 the
// sum is renormalized over it, and at exactly 100 the sum already is a
// valid percentage.
func OverallFromCategories(categories models.CategoryGrades, weights models.GradeWeights) float64 {
	var sum float64
	var totalWeightUsed int
	for _, category := range models.Categories() {
		grade := categories.ByCategory(category)
		if grade.Total == 0 {
			continue
		}
		weight := weights.WeightFor(category)
		sum += grade.Average * float64(weight) / 100
		totalWeightUsed += weight
	}
	if totalWeightUsed == 0 {
		return 0
	}
	if totalWeightUsed < 100 {
		sum = sum / float64(totalWeightUsed) * 100
	}
	return clampPercentage(Round2(sum))
}

// LetterGrade maps a percentage to a letter grade, first match wins.
func LetterGrade(percentage float64) string {
	thresholds := []struct {
		min    float64
		letter string
	}{
		{97, "A+"}, {93, "A"}, {90, "A-"},
		{87, "B+"}, {83, "B"}, {80, "B-"},
		{77, "C+"}, {73, "C"}, {70, "C-"},
		{67, "D+"}, {63, "D"}, {60, "D-"},
	}
	for _, t := range thresholds {
		if percentage >= t.min {
			return t.letter
		}
	}
	return "F"
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampPercentage(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
