package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursekit/lms-api/internal/models"
)

// GradeWeightsRepository handles per-course grade weight persistence.
type GradeWeightsRepository struct {
	db *sqlx.DB
}

// NewGradeWeightsRepository creates a new grade weights repository.
func NewGradeWeightsRepository(db *sqlx.DB) *GradeWeightsRepository {
	return &GradeWeightsRepository{db: db}
}

// FindByCourse returns the weights row for a course.
func (r *GradeWeightsRepository) FindByCourse(ctx context.Context, courseID string) (*models.GradeWeights, error) {
	const query = `SELECT id, course_id, assignment_weight, activity_weight, exam_weight, created_at, updated_at
        FROM grade_weights WHERE course_id = $1`
	var weights models.GradeWeights
	if err := r.db.GetContext(ctx, &weights, query, courseID); err != nil {
		return nil, err
	}
	return &weights, nil
}

// Upsert writes the weights as a single statement so no partial-weight
// state is ever observable.
func (r *GradeWeightsRepository) Upsert(ctx context.Context, weights *models.GradeWeights) error {
	if weights.ID == "" {
		weights.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if weights.CreatedAt.IsZero() {
		weights.CreatedAt = now
	}
	weights.UpdatedAt = now
	const query = `INSERT INTO grade_weights (id, course_id, assignment_weight, activity_weight, exam_weight, created_at, updated_at)
        VALUES (:id, :course_id, :assignment_weight, :activity_weight, :exam_weight, :created_at, :updated_at)
        ON CONFLICT (course_id)
        DO UPDATE SET assignment_weight = EXCLUDED.assignment_weight,
            activity_weight = EXCLUDED.activity_weight,
            exam_weight = EXCLUDED.exam_weight,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, weights); err != nil {
		return fmt.Errorf("upsert grade weights: %w", err)
	}
	return nil
}
