package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coursekit/lms-api/internal/models"
)

// CourseRepository reads course, module and lesson structure.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, instructor_id, title, section, passing_grade, is_published, created_at, updated_at
        FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindOwned returns the course only when the instructor owns it. Absence
// and foreign ownership are indistinguishable to the caller.
func (r *CourseRepository) FindOwned(ctx context.Context, id, instructorID string) (*models.Course, error) {
	const query = `SELECT id, instructor_id, title, section, passing_grade, is_published, created_at, updated_at
        FROM courses WHERE id = $1 AND instructor_id = $2`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id, instructorID); err != nil {
		return nil, err
	}
	return &course, nil
}

// Structure returns the ordered module and lesson layout for a course.
func (r *CourseRepository) Structure(ctx context.Context, courseID string) (*models.CourseStructure, error) {
	const moduleQuery = `SELECT id, course_id, title, position FROM course_modules
        WHERE course_id = $1 ORDER BY position ASC`
	var modules []models.CourseModule
	if err := r.db.SelectContext(ctx, &modules, moduleQuery, courseID); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}

	const lessonQuery = `SELECT l.id, l.module_id, m.course_id, l.title, l.position
        FROM lessons l
        JOIN course_modules m ON m.id = l.module_id
        WHERE m.course_id = $1
        ORDER BY m.position ASC, l.position ASC`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, lessonQuery, courseID); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}

	return &models.CourseStructure{CourseID: courseID, Modules: modules, Lessons: lessons}, nil
}

// FindLesson returns a lesson with its owning course resolved.
func (r *CourseRepository) FindLesson(ctx context.Context, lessonID string) (*models.Lesson, error) {
	const query = `SELECT l.id, l.module_id, m.course_id, l.title, l.position
        FROM lessons l
        JOIN course_modules m ON m.id = l.module_id
        WHERE l.id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, lessonID); err != nil {
		return nil, err
	}
	return &lesson, nil
}
