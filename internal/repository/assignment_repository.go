package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursekit/lms-api/internal/models"
)

// AssignmentRepository handles assignment and submission persistence.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListPublishedByCourse returns published assignments in due-date order.
func (r *AssignmentRepository) ListPublishedByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	const query = `SELECT id, course_id, module_id, title, category, points, due_date, is_published, created_at
        FROM assignments
        WHERE course_id = $1 AND is_published = TRUE
        ORDER BY due_date ASC NULLS LAST, created_at ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, courseID); err != nil {
		return nil, fmt.Errorf("list published assignments: %w", err)
	}
	return assignments, nil
}

// ListSubmissionsByStudent returns a student's submissions for all
// published assignments of a course.
func (r *AssignmentRepository) ListSubmissionsByStudent(ctx context.Context, courseID, studentID string) ([]models.Submission, error) {
	const query = `SELECT sub.id, sub.assignment_id, sub.student_id, sub.score, sub.max_score, sub.status, sub.submitted_at
        FROM submissions sub
        JOIN assignments a ON a.id = sub.assignment_id
        WHERE a.course_id = $1 AND a.is_published = TRUE AND sub.student_id = $2`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, courseID, studentID); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// ListSubmissionsByCourse returns all submissions for published assignments
// keyed by student ID. Used by the gradebook roll-up to avoid N queries.
func (r *AssignmentRepository) ListSubmissionsByCourse(ctx context.Context, courseID string) (map[string][]models.Submission, error) {
	const query = `SELECT sub.id, sub.assignment_id, sub.student_id, sub.score, sub.max_score, sub.status, sub.submitted_at
        FROM submissions sub
        JOIN assignments a ON a.id = sub.assignment_id
        WHERE a.course_id = $1 AND a.is_published = TRUE`
	rows, err := r.db.QueryxContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list course submissions: %w", err)
	}
	defer rows.Close()
	result := make(map[string][]models.Submission)
	for rows.Next() {
		var submission models.Submission
		if err := rows.StructScan(&submission); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		result[submission.StudentID] = append(result[submission.StudentID], submission)
	}
	return result, rows.Err()
}

// UpsertSubmission records or replaces the single active submission per
// (student, assignment).
func (r *AssignmentRepository) UpsertSubmission(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO submissions (id, assignment_id, student_id, score, max_score, status, submitted_at)
        VALUES (:id, :assignment_id, :student_id, :score, :max_score, :status, :submitted_at)
        ON CONFLICT (assignment_id, student_id)
        DO UPDATE SET score = EXCLUDED.score, max_score = EXCLUDED.max_score,
            status = EXCLUDED.status, submitted_at = EXCLUDED.submitted_at`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}
