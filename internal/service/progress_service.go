package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursekit/lms-api/internal/models"
	appErrors "github.com/coursekit/lms-api/pkg/errors"
)

type enrollmentReader interface {
	FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	ListActiveByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
}

type lessonProgressRepo interface {
	ListByStudentAndCourse(ctx context.Context, studentID, courseID string) (map[string]models.LessonProgress, error)
	CountCompletedByCourse(ctx context.Context, studentID, courseID string) (int, error)
	Upsert(ctx context.Context, progress *models.LessonProgress) error
}

// UpdateLessonProgressRequest carries a partial progress update.
type UpdateLessonProgressRequest struct {
	CompletionPercentage int   `json:"completion_percentage" validate:"min=0,max=100"`
	Completed            *bool `json:"completed,omitempty"`
}

// ProgressService maintains per-lesson completion state and enforces
// sequential unlocking. Lock state is computed from lesson ordering, never
// stored; only completion persists.
type ProgressService struct {
	courses     courseReader
	enrollments enrollmentReader
	progress    lessonProgressRepo
	structures  *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewProgressService constructs ProgressService. The cache service is
// optional and only ever holds course structure.
func NewProgressService(courses courseReader, enrollments enrollmentReader, progress lessonProgressRepo, structures *CacheService, validate *validator.Validate, logger *zap.Logger) *ProgressService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{courses: courses, enrollments: enrollments, progress: progress, structures: structures, validator: validate, logger: logger}
}

// CompleteLesson marks a lesson completed after validating the student's
// active enrollment and the completion of the immediately preceding lesson.
func (s *ProgressService) CompleteLesson(ctx context.Context, studentID, lessonID string) (*models.CompleteLessonResult, error) {
	lesson, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveEnrollment(ctx, studentID, lesson.CourseID); err != nil {
		return nil, err
	}
	structure, err := s.loadStructure(ctx, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	progress, err := s.progress.ListByStudentAndCourse(ctx, studentID, lesson.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson progress")
	}
	if previous := previousLesson(structure, lesson.ID); previous != nil {
		if !progress[previous.ID].IsCompleted {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("previous lesson %q is not completed", previous.Title))
		}
	}
	now := time.Now().UTC()
	row := models.LessonProgress{
		StudentID:            studentID,
		LessonID:             lesson.ID,
		CompletionPercentage: 100,
		IsCompleted:          true,
		CompletedAt:          &now,
	}
	if existing, ok := progress[lesson.ID]; ok {
		row.ID = existing.ID
		if existing.IsCompleted {
			row.CompletedAt = existing.CompletedAt
		}
	}
	if err := s.progress.Upsert(ctx, &row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save lesson progress")
	}

	result := &models.CompleteLessonResult{LessonID: lesson.ID, Completed: true}
	if next := nextLesson(structure, lesson.ID); next != nil {
		nextID := next.ID
		result.NextLessonID = &nextID
		// The completed lesson either precedes next in its module or next
		// opens a new module, so next is unlocked either way.
		result.NextLessonUnlocked = true
	}
	return result, nil
}

// UpdateProgress records partial progress on a lesson. A percentage of 100
// (or an explicit completed flag) routes through the completion path and
// its sequential-unlock gate.
func (s *ProgressService) UpdateProgress(ctx context.Context, studentID, lessonID string, req UpdateLessonProgressRequest) (*models.LessonProgress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "completion percentage must be between 0 and 100")
	}
	if req.CompletionPercentage >= 100 || (req.Completed != nil && *req.Completed) {
		if _, err := s.CompleteLesson(ctx, studentID, lessonID); err != nil {
			return nil, err
		}
		return s.findProgressRow(ctx, studentID, lessonID)
	}
	lesson, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveEnrollment(ctx, studentID, lesson.CourseID); err != nil {
		return nil, err
	}
	progress, err := s.progress.ListByStudentAndCourse(ctx, studentID, lesson.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson progress")
	}
	existing, ok := progress[lesson.ID]
	if ok && existing.IsCompleted {
		// Completion is terminal; a late partial update never regresses it.
		return &existing, nil
	}
	row := models.LessonProgress{
		ID:                   existing.ID,
		StudentID:            studentID,
		LessonID:             lesson.ID,
		CompletionPercentage: req.CompletionPercentage,
	}
	if err := s.progress.Upsert(ctx, &row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save lesson progress")
	}
	return &row, nil
}

// CourseProgress returns the per-module lesson states and completion
// percentages for a student. Lock state is derived here on the fly.
func (s *ProgressService) CourseProgress(ctx context.Context, studentID, courseID string) (*models.CourseProgressView, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	structure, err := s.loadStructure(ctx, courseID)
	if err != nil {
		return nil, err
	}
	progress, err := s.progress.ListByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson progress")
	}

	view := &models.CourseProgressView{CourseID: courseID, StudentID: studentID}
	for _, module := range structure.Modules {
		moduleView := models.ModuleProgressView{ModuleID: module.ID, Title: module.Title, Position: module.Position}
		previousCompleted := true
		for _, lesson := range structure.LessonsByModule(module.ID) {
			row := progress[lesson.ID]
			state := models.LessonStateLocked
			switch {
			case row.IsCompleted:
				state = models.LessonStateCompleted
			case previousCompleted:
				state = models.LessonStateUnlocked
			}
			moduleView.Lessons = append(moduleView.Lessons, models.LessonProgressView{
				LessonID:             lesson.ID,
				Title:                lesson.Title,
				Position:             lesson.Position,
				State:                state,
				CompletionPercentage: row.CompletionPercentage,
				CompletedAt:          row.CompletedAt,
			})
			moduleView.TotalLessons++
			if row.IsCompleted {
				moduleView.CompletedLessons++
			}
			previousCompleted = row.IsCompleted
		}
		moduleView.CompletionPercentage = completionPercentage(moduleView.CompletedLessons, moduleView.TotalLessons)
		view.CompletedLessons += moduleView.CompletedLessons
		view.TotalLessons += moduleView.TotalLessons
		view.Modules = append(view.Modules, moduleView)
	}
	view.CompletionPercentage = completionPercentage(view.CompletedLessons, view.TotalLessons)
	return view, nil
}

func (s *ProgressService) findLesson(ctx context.Context, lessonID string) (*models.Lesson, error) {
	lesson, err := s.courses.FindLesson(ctx, lessonID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

func (s *ProgressService) requireActiveEnrollment(ctx context.Context, studentID, courseID string) error {
	enrollment, err := s.enrollments.FindByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return appErrors.Clone(appErrors.ErrValidation, "enrollment is not active")
	}
	return nil
}

func (s *ProgressService) findProgressRow(ctx context.Context, studentID, lessonID string) (*models.LessonProgress, error) {
	lesson, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	progress, err := s.progress.ListByStudentAndCourse(ctx, studentID, lesson.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson progress")
	}
	row, ok := progress[lessonID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson progress not found")
	}
	return &row, nil
}

const structureCacheKeyPrefix = "course:structure:"

func (s *ProgressService) loadStructure(ctx context.Context, courseID string) (*models.CourseStructure, error) {
	key := structureCacheKeyPrefix + courseID
	if s.structures.Enabled() {
		var cached models.CourseStructure
		if hit, err := s.structures.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}
	structure, err := s.courses.Structure(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course structure")
	}
	if s.structures.Enabled() {
		if err := s.structures.Set(ctx, key, structure, 0); err != nil {
			s.logger.Warn("failed to cache course structure", zap.String("course_id", courseID), zap.Error(err))
		}
	}
	return structure, nil
}

// previousLesson returns the lesson immediately before lessonID within its
// module, or nil when lessonID opens its module.
func previousLesson(structure *models.CourseStructure, lessonID string) *models.Lesson {
	var moduleID string
	for _, lesson := range structure.Lessons {
		if lesson.ID == lessonID {
			moduleID = lesson.ModuleID
			break
		}
	}
	var previous *models.Lesson
	for _, lesson := range structure.LessonsByModule(moduleID) {
		if lesson.ID == lessonID {
			return previous
		}
		current := lesson
		previous = &current
	}
	return nil
}

// nextLesson returns the lesson after lessonID in course-wide order.
func nextLesson(structure *models.CourseStructure, lessonID string) *models.Lesson {
	for i, lesson := range structure.Lessons {
		if lesson.ID == lessonID && i+1 < len(structure.Lessons) {
			next := structure.Lessons[i+1]
			return &next
		}
	}
	return nil
}

// completionPercentage is the integer-rounded completed/total ratio.
func completionPercentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
