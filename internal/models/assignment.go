package models

import "time"

// AssignmentCategory is the unit of grade weighting.
type AssignmentCategory string

// The three gradable categories.
const (
	CategoryAssignment AssignmentCategory = "ASSIGNMENT"
	CategoryActivity   AssignmentCategory = "ACTIVITY"
	CategoryExam       AssignmentCategory = "EXAM"
)

// Categories lists all categories in weight order.
func Categories() []AssignmentCategory {
	return []AssignmentCategory{CategoryAssignment, CategoryActivity, CategoryExam}
}

// Valid reports whether the category is one of the known three.
func (c AssignmentCategory) Valid() bool {
	switch c {
	case CategoryAssignment, CategoryActivity, CategoryExam:
		return true
	}
	return false
}

// Assignment represents gradable work within a course. Category membership
// is fixed by Category once created.
type Assignment struct {
	ID          string             `db:"id" json:"id"`
	CourseID    string             `db:"course_id" json:"course_id"`
	ModuleID    string             `db:"module_id" json:"module_id"`
	Title       string             `db:"title" json:"title"`
	Category    AssignmentCategory `db:"category" json:"category"`
	Points      int                `db:"points" json:"points"`
	DueDate     *time.Time         `db:"due_date" json:"due_date,omitempty"`
	IsPublished bool               `db:"is_published" json:"is_published"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
}

// SubmissionStatus marks the state of a submission.
type SubmissionStatus string

// Possible submission statuses.
const (
	SubmissionStatusSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionStatusGraded    SubmissionStatus = "GRADED"
)

// Submission is the single active piece of submitted work per
// (student, assignment). Resubmission updates the row in place.
type Submission struct {
	ID           string           `db:"id" json:"id"`
	AssignmentID string           `db:"assignment_id" json:"assignment_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	Score        float64          `db:"score" json:"score"`
	MaxScore     float64          `db:"max_score" json:"max_score"`
	Status       SubmissionStatus `db:"status" json:"status"`
	SubmittedAt  time.Time        `db:"submitted_at" json:"submitted_at"`
}
