package models

import "time"

// GradeWeights configures how the three categories combine into the
// overall grade. The three weights always sum to exactly 100.
type GradeWeights struct {
	ID               string    `db:"id" json:"id"`
	CourseID         string    `db:"course_id" json:"course_id"`
	AssignmentWeight int       `db:"assignment_weight" json:"assignment_weight"`
	ActivityWeight   int       `db:"activity_weight" json:"activity_weight"`
	ExamWeight       int       `db:"exam_weight" json:"exam_weight"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// WeightFor returns the configured weight for a category.
func (w GradeWeights) WeightFor(category AssignmentCategory) int {
	switch category {
	case CategoryAssignment:
		return w.AssignmentWeight
	case CategoryActivity:
		return w.ActivityWeight
	case CategoryExam:
		return w.ExamWeight
	}
	return 0
}

// Sum returns the total of the three weights.
func (w GradeWeights) Sum() int {
	return w.AssignmentWeight + w.ActivityWeight + w.ExamWeight
}

// CategoryGrade summarises a student's standing in one category.
type CategoryGrade struct {
	Average   float64 `json:"average"`
	Submitted int     `json:"submitted"`
	Total     int     `json:"total"`
}

// CategoryGrades holds per-category aggregates for one student in a course.
type CategoryGrades struct {
	Assignment CategoryGrade `json:"assignment"`
	Activity   CategoryGrade `json:"activity"`
	Exam       CategoryGrade `json:"exam"`
}

// ByCategory returns the aggregate for the given category.
func (g CategoryGrades) ByCategory(category AssignmentCategory) CategoryGrade {
	switch category {
	case CategoryAssignment:
		return g.Assignment
	case CategoryActivity:
		return g.Activity
	case CategoryExam:
		return g.Exam
	}
	return CategoryGrade{}
}

// GradeSummary is the derived full grade picture for one student. It is
// recomputed from source data on every request, never persisted.
type GradeSummary struct {
	CourseID     string         `json:"course_id"`
	StudentID    string         `json:"student_id"`
	OverallGrade float64        `json:"overall_grade"`
	LetterGrade  string         `json:"letter_grade"`
	Categories   CategoryGrades `json:"categories"`
	Weights      GradeWeights   `json:"weights"`
}

// AssignmentGradeRow details one assignment within a student gradebook.
type AssignmentGradeRow struct {
	AssignmentID string             `json:"assignment_id"`
	Title        string             `json:"title"`
	Category     AssignmentCategory `json:"category"`
	Points       int                `json:"points"`
	DueDate      *time.Time         `json:"due_date,omitempty"`
	Score        *float64           `json:"score,omitempty"`
	MaxScore     *float64           `json:"max_score,omitempty"`
	Percentage   *float64           `json:"percentage,omitempty"`
	SubmittedAt  *time.Time         `json:"submitted_at,omitempty"`
}

// StudentGradebook is the student-facing view: the summary plus every
// published assignment with its submission state.
type StudentGradebook struct {
	Summary     GradeSummary         `json:"summary"`
	Assignments []AssignmentGradeRow `json:"assignments"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
	TotalCount int `json:"total_count"`
}
