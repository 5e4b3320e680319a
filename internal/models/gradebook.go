package models

// GradebookSortKey enumerates the sortable gradebook columns.
type GradebookSortKey string

// Supported sort keys.
const (
	SortByName            GradebookSortKey = "name"
	SortByStudentNumber   GradebookSortKey = "student_number"
	SortByEmail           GradebookSortKey = "email"
	SortByOverallGrade    GradebookSortKey = "overall_grade"
	SortByAssignmentGrade GradebookSortKey = "assignment_grade"
	SortByActivityGrade   GradebookSortKey = "activity_grade"
	SortByExamGrade       GradebookSortKey = "exam_grade"
)

// Valid reports whether the sort key is supported.
func (k GradebookSortKey) Valid() bool {
	switch k {
	case SortByName, SortByStudentNumber, SortByEmail, SortByOverallGrade,
		SortByAssignmentGrade, SortByActivityGrade, SortByExamGrade:
		return true
	}
	return false
}

// SubmissionCompleteness filters rows by whether every published
// assignment has a submission.
type SubmissionCompleteness string

// Completeness filter values.
const (
	CompletenessAll        SubmissionCompleteness = "all_submitted"
	CompletenessHasMissing SubmissionCompleteness = "has_missing"
)

// GradebookQuery carries the instructor gradebook filters, sort and page.
type GradebookQuery struct {
	MinGrade     *float64
	MaxGrade     *float64
	Section      string
	Completeness SubmissionCompleteness
	SortBy       GradebookSortKey
	SortOrder    string
	Offset       int
	Limit        int
}

// GradebookRow is one student's computed line in the instructor gradebook.
type GradebookRow struct {
	StudentID     string         `json:"student_id"`
	StudentName   string         `json:"student_name"`
	StudentNumber string         `json:"student_number"`
	StudentEmail  string         `json:"student_email"`
	Section       string         `json:"section"`
	OverallGrade  float64        `json:"overall_grade"`
	LetterGrade   string         `json:"letter_grade"`
	Categories    CategoryGrades `json:"categories"`
	AllSubmitted  bool           `json:"all_submitted"`
}

// Gradebook is the paginated instructor view. ClassAverage is the mean
// overall grade of the filtered set, not just the returned page.
type Gradebook struct {
	CourseID     string         `json:"course_id"`
	Rows         []GradebookRow `json:"rows"`
	ClassAverage float64        `json:"class_average"`
	Weights      GradeWeights   `json:"weights"`
	Pagination   Pagination     `json:"pagination"`
}
