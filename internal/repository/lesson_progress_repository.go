package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursekit/lms-api/internal/models"
)

// LessonProgressRepository handles lesson progress persistence.
type LessonProgressRepository struct {
	db *sqlx.DB
}

// NewLessonProgressRepository creates a new lesson progress repository.
func NewLessonProgressRepository(db *sqlx.DB) *LessonProgressRepository {
	return &LessonProgressRepository{db: db}
}

// ListByStudentAndCourse returns progress rows keyed by lesson ID.
func (r *LessonProgressRepository) ListByStudentAndCourse(ctx context.Context, studentID, courseID string) (map[string]models.LessonProgress, error) {
	const query = `SELECT lp.id, lp.student_id, lp.lesson_id, lp.completion_percentage, lp.is_completed, lp.completed_at, lp.updated_at
        FROM lesson_progress lp
        JOIN lessons l ON l.id = lp.lesson_id
        JOIN course_modules m ON m.id = l.module_id
        WHERE lp.student_id = $1 AND m.course_id = $2`
	rows, err := r.db.QueryxContext(ctx, query, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lesson progress: %w", err)
	}
	defer rows.Close()
	result := make(map[string]models.LessonProgress)
	for rows.Next() {
		var progress models.LessonProgress
		if err := rows.StructScan(&progress); err != nil {
			return nil, fmt.Errorf("scan lesson progress: %w", err)
		}
		result[progress.LessonID] = progress
	}
	return result, rows.Err()
}

// CountCompletedByCourse returns the number of completed lessons a
// student has in a course.
func (r *LessonProgressRepository) CountCompletedByCourse(ctx context.Context, studentID, courseID string) (int, error) {
	const query = `SELECT COUNT(*)
        FROM lesson_progress lp
        JOIN lessons l ON l.id = lp.lesson_id
        JOIN course_modules m ON m.id = l.module_id
        WHERE lp.student_id = $1 AND m.course_id = $2 AND lp.is_completed = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, courseID); err != nil {
		return 0, fmt.Errorf("count completed lessons: %w", err)
	}
	return count, nil
}

// Upsert idempotently writes a lesson progress row.
func (r *LessonProgressRepository) Upsert(ctx context.Context, progress *models.LessonProgress) error {
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	progress.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO lesson_progress (id, student_id, lesson_id, completion_percentage, is_completed, completed_at, updated_at)
        VALUES (:id, :student_id, :lesson_id, :completion_percentage, :is_completed, :completed_at, :updated_at)
        ON CONFLICT (student_id, lesson_id)
        DO UPDATE SET completion_percentage = EXCLUDED.completion_percentage,
            is_completed = EXCLUDED.is_completed,
            completed_at = EXCLUDED.completed_at,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("upsert lesson progress: %w", err)
	}
	return nil
}
