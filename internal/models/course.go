package models

import "time"

// Course represents a published course owned by an instructor.
type Course struct {
	ID           string    `db:"id" json:"id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	Title        string    `db:"title" json:"title"`
	Section      string    `db:"section" json:"section"`
	PassingGrade *float64  `db:"passing_grade" json:"passing_grade,omitempty"`
	IsPublished  bool      `db:"is_published" json:"is_published"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// HasPassingGrade reports whether a passing grade has been configured.
func (c Course) HasPassingGrade() bool {
	return c.PassingGrade != nil
}

// CourseModule groups lessons inside a course, ordered by position.
type CourseModule struct {
	ID       string `db:"id" json:"id"`
	CourseID string `db:"course_id" json:"course_id"`
	Title    string `db:"title" json:"title"`
	Position int    `db:"position" json:"position"`
}

// Lesson is a single unit of content within a module. Position is the
// order index that drives sequential unlocking.
type Lesson struct {
	ID       string `db:"id" json:"id"`
	ModuleID string `db:"module_id" json:"module_id"`
	CourseID string `db:"course_id" json:"course_id"`
	Title    string `db:"title" json:"title"`
	Position int    `db:"position" json:"position"`
}

// CourseStructure is the ordered module/lesson layout of a course. It is
// the only payload the structure cache is allowed to hold.
type CourseStructure struct {
	CourseID string         `json:"course_id"`
	Modules  []CourseModule `json:"modules"`
	Lessons  []Lesson       `json:"lessons"`
}

// LessonsByModule returns the lessons of one module in position order.
// Lessons in the structure are already sorted by module then position.
func (s CourseStructure) LessonsByModule(moduleID string) []Lesson {
	var lessons []Lesson
	for _, lesson := range s.Lessons {
		if lesson.ModuleID == moduleID {
			lessons = append(lessons, lesson)
		}
	}
	return lessons
}
