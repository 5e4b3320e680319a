package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursekit/lms-api/internal/models"
	appErrors "github.com/coursekit/lms-api/pkg/errors"
)

type gradeWeightsRepo interface {
	FindByCourse(ctx context.Context, courseID string) (*models.GradeWeights, error)
	Upsert(ctx context.Context, weights *models.GradeWeights) error
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindOwned(ctx context.Context, id, instructorID string) (*models.Course, error)
	Structure(ctx context.Context, courseID string) (*models.CourseStructure, error)
	FindLesson(ctx context.Context, lessonID string) (*models.Lesson, error)
}

// UpdateGradeWeightsRequest carries the instructor's new category weights.
type UpdateGradeWeightsRequest struct {
	AssignmentWeight int `json:"assignment_weight" validate:"min=0,max=100"`
	ActivityWeight   int `json:"activity_weight" validate:"min=0,max=100"`
	ExamWeight       int `json:"exam_weight" validate:"min=0,max=100"`
}

// GradeWeightsService manages per-course grade weight configuration.
type GradeWeightsService struct {
	weights   gradeWeightsRepo
	courses   courseReader
	defaults  models.GradeWeights
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeWeightsService constructs GradeWeightsService. The defaults are
// used to lazily create a weights row on first read.
func NewGradeWeightsService(weights gradeWeightsRepo, courses courseReader, defaults models.GradeWeights, validate *validator.Validate, logger *zap.Logger) *GradeWeightsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.Sum() != 100 {
		defaults = models.GradeWeights{AssignmentWeight: 40, ActivityWeight: 30, ExamWeight: 30}
	}
	return &GradeWeightsService{weights: weights, courses: courses, defaults: defaults, validator: validate, logger: logger}
}

// Resolve returns the weights for a course, creating the default
// 40/30/30 row on first read.
func (s *GradeWeightsService) Resolve(ctx context.Context, courseID string) (*models.GradeWeights, error) {
	weights, err := s.weights.FindByCourse(ctx, courseID)
	if err == nil {
		return weights, nil
	}
	if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade weights")
	}
	created := models.GradeWeights{
		CourseID:         courseID,
		AssignmentWeight: s.defaults.AssignmentWeight,
		ActivityWeight:   s.defaults.ActivityWeight,
		ExamWeight:       s.defaults.ExamWeight,
	}
	if err := s.weights.Upsert(ctx, &created); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create default grade weights")
	}
	s.logger.Info("created default grade weights", zap.String("course_id", courseID))
	return &created, nil
}

// Get returns the weights for a course, checking the course exists first.
func (s *GradeWeightsService) Get(ctx context.Context, courseID string) (*models.GradeWeights, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return s.Resolve(ctx, courseID)
}

// Update replaces the course weights. The write only happens when the
// three weights sum to exactly 100; prior weights stay untouched otherwise.
func (s *GradeWeightsService) Update(ctx context.Context, courseID, instructorID string, req UpdateGradeWeightsRequest) (*models.GradeWeights, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade weights payload")
	}
	if req.AssignmentWeight+req.ActivityWeight+req.ExamWeight != 100 {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "")
	}
	if _, err := s.courses.FindOwned(ctx, courseID, instructorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	existing, err := s.weights.FindByCourse(ctx, courseID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade weights")
	}
	weights := models.GradeWeights{
		CourseID:         courseID,
		AssignmentWeight: req.AssignmentWeight,
		ActivityWeight:   req.ActivityWeight,
		ExamWeight:       req.ExamWeight,
	}
	if existing != nil {
		weights.ID = existing.ID
		weights.CreatedAt = existing.CreatedAt
	}
	if err := s.weights.Upsert(ctx, &weights); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade weights")
	}
	return &weights, nil
}
