package models

import "time"

// LessonState is the computed readiness of a lesson for a student. Only
// completion is persisted; locked/unlocked derive from lesson ordering.
type LessonState string

// Possible lesson states.
const (
	LessonStateLocked    LessonState = "LOCKED"
	LessonStateUnlocked  LessonState = "UNLOCKED"
	LessonStateCompleted LessonState = "COMPLETED"
)

// LessonProgress stores a student's persisted progress on one lesson.
type LessonProgress struct {
	ID                   string     `db:"id" json:"id"`
	StudentID            string     `db:"student_id" json:"student_id"`
	LessonID             string     `db:"lesson_id" json:"lesson_id"`
	CompletionPercentage int        `db:"completion_percentage" json:"completion_percentage"`
	IsCompleted          bool       `db:"is_completed" json:"is_completed"`
	CompletedAt          *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// CompleteLessonResult reports the outcome of a lesson completion call.
type CompleteLessonResult struct {
	LessonID           string  `json:"lesson_id"`
	Completed          bool    `json:"completed"`
	NextLessonID       *string `json:"next_lesson_id,omitempty"`
	NextLessonUnlocked bool    `json:"next_lesson_unlocked"`
}

// LessonProgressView is one lesson with its computed state.
type LessonProgressView struct {
	LessonID             string      `json:"lesson_id"`
	Title                string      `json:"title"`
	Position             int         `json:"position"`
	State                LessonState `json:"state"`
	CompletionPercentage int         `json:"completion_percentage"`
	CompletedAt          *time.Time  `json:"completed_at,omitempty"`
}

// ModuleProgressView aggregates lesson states for one module.
type ModuleProgressView struct {
	ModuleID             string               `json:"module_id"`
	Title                string               `json:"title"`
	Position             int                  `json:"position"`
	CompletedLessons     int                  `json:"completed_lessons"`
	TotalLessons         int                  `json:"total_lessons"`
	CompletionPercentage int                  `json:"completion_percentage"`
	Lessons              []LessonProgressView `json:"lessons"`
}

// CourseProgressView is the full per-course progress picture.
type CourseProgressView struct {
	CourseID             string               `json:"course_id"`
	StudentID            string               `json:"student_id"`
	CompletedLessons     int                  `json:"completed_lessons"`
	TotalLessons         int                  `json:"total_lessons"`
	CompletionPercentage int                  `json:"completion_percentage"`
	Modules              []ModuleProgressView `json:"modules"`
}
