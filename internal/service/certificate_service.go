package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/coursekit/lms-api/internal/models"
	appErrors "github.com/coursekit/lms-api/pkg/errors"
)

type certificateRepo interface {
	FindByCourseAndStudent(ctx context.Context, courseID, studentID string) (*models.CourseCertificate, error)
	ListByCourse(ctx context.Context, courseID string) (map[string]models.CourseCertificate, error)
	Insert(ctx context.Context, cert *models.CourseCertificate) error
	Revoke(ctx context.Context, certID, revokedBy, reason string) error
}

type gradeCalculator interface {
	OverallGrade(ctx context.Context, courseID, studentID string) (*models.GradeSummary, error)
}

// CertificateService evaluates certificate eligibility and manages the
// issue/revoke lifecycle. Exactly-once issuance rests on the storage
// unique constraint, not on application locking.
type CertificateService struct {
	certificates certificateRepo
	courses      courseReader
	enrollments  enrollmentReader
	assignments  assignmentReader
	progress     lessonProgressRepo
	grades       gradeCalculator
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewCertificateService constructs CertificateService.
func NewCertificateService(certificates certificateRepo, courses courseReader, enrollments enrollmentReader, assignments assignmentReader, progress lessonProgressRepo, grades gradeCalculator, metrics *MetricsService, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{
		certificates: certificates,
		courses:      courses,
		enrollments:  enrollments,
		assignments:  assignments,
		progress:     progress,
		grades:       grades,
		metrics:      metrics,
		logger:       logger,
	}
}

// CheckEligibility computes the full eligibility verdict for a student.
// Every failing condition lands in IneligibilityReasons, never just the
// first one found.
func (s *CertificateService) CheckEligibility(ctx context.Context, courseID, studentID, instructorID string) (*models.Eligibility, error) {
	course, err := s.ownedCourse(ctx, courseID, instructorID)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, course, studentID)
}

// Issue creates the certificate for an eligible student, snapshotting the
// grade computed at this instant. Concurrent duplicates are settled by the
// (course, student) unique constraint and translate to the same Conflict
// the pre-check produces.
func (s *CertificateService) Issue(ctx context.Context, courseID, studentID, instructorID string) (*models.CourseCertificate, error) {
	course, err := s.ownedCourse(ctx, courseID, instructorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.certificates.FindByCourseAndStudent(ctx, courseID, studentID); err == nil {
		s.metrics.RecordCertificateConflict()
		return nil, appErrors.Clone(appErrors.ErrConflict, "certificate already exists for this student")
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing certificate")
	}
	eligibility, err := s.evaluate(ctx, course, studentID)
	if err != nil {
		return nil, err
	}
	if !eligibility.IsEligible {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not eligible: "+strings.Join(eligibility.IneligibilityReasons, "; "))
	}
	cert := &models.CourseCertificate{
		CourseID:   courseID,
		StudentID:  studentID,
		IssuedBy:   instructorID,
		FinalGrade: eligibility.OverallGrade,
		Status:     models.CertificateStatusActive,
	}
	if err := s.certificates.Insert(ctx, cert); err != nil {
		if appErrors.HasCode(err, appErrors.ErrConflict) {
			// Lost the race to a concurrent issuance.
			s.metrics.RecordCertificateConflict()
			return nil, appErrors.Clone(appErrors.ErrConflict, "certificate already exists for this student")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue certificate")
	}
	s.metrics.RecordCertificateIssued()
	s.logger.Info("certificate issued",
		zap.String("course_id", courseID),
		zap.String("student_id", studentID),
		zap.Float64("final_grade", cert.FinalGrade))
	return cert, nil
}

// Revoke marks an active certificate revoked, preserving the row for
// audit. Revocation is terminal; a revoked certificate cannot be revoked
// again and never frees the (course, student) slot.
func (s *CertificateService) Revoke(ctx context.Context, courseID, studentID, instructorID, reason string) (*models.CourseCertificate, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "revocation reason is required")
	}
	if _, err := s.ownedCourse(ctx, courseID, instructorID); err != nil {
		return nil, err
	}
	cert, err := s.certificates.FindByCourseAndStudent(ctx, courseID, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}
	if cert.Status == models.CertificateStatusRevoked {
		return nil, appErrors.Clone(appErrors.ErrConflict, "certificate is already revoked")
	}
	if err := s.certificates.Revoke(ctx, cert.ID, instructorID, reason); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke certificate")
	}
	updated, err := s.certificates.FindByCourseAndStudent(ctx, courseID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}
	s.logger.Info("certificate revoked",
		zap.String("certificate_id", cert.ID),
		zap.String("revoked_by", instructorID))
	return updated, nil
}

// EligibleStudents reports which actively-enrolled students currently
// qualify for a certificate. Per-student failures are skipped, never
// aborting the batch.
func (s *CertificateService) EligibleStudents(ctx context.Context, courseID, instructorID string) (*models.EligibleStudentsReport, error) {
	course, err := s.ownedCourse(ctx, courseID, instructorID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	certificates, err := s.certificates.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificates")
	}

	report := &models.EligibleStudentsReport{CourseID: courseID, TotalEnrolled: len(enrollments), Students: []models.EligibleStudent{}}
	for _, enrollment := range enrollments {
		if _, exists := certificates[enrollment.StudentID]; exists {
			continue
		}
		eligibility, err := s.evaluate(ctx, course, enrollment.StudentID)
		if err != nil {
			s.logger.Warn("skipping student in eligibility report",
				zap.String("course_id", courseID),
				zap.String("student_id", enrollment.StudentID),
				zap.Error(err))
			report.SkippedStudents++
			continue
		}
		if !eligibility.IsEligible {
			continue
		}
		report.Students = append(report.Students, models.EligibleStudent{
			StudentID:      enrollment.StudentID,
			StudentName:    enrollment.StudentName,
			StudentNumber:  enrollment.StudentNumber,
			StudentEmail:   enrollment.StudentEmail,
			OverallGrade:   eligibility.OverallGrade,
			CourseProgress: eligibility.CourseProgress,
		})
	}
	report.TotalEligible = len(report.Students)
	return report, nil
}

func (s *CertificateService) ownedCourse(ctx context.Context, courseID, instructorID string) (*models.Course, error) {
	course, err := s.courses.FindOwned(ctx, courseID, instructorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// evaluate builds the eligibility verdict from enrollment, grade, progress
// and existing-certificate signals. Missing data degrades to zero values
// so the verdict is always complete and explainable.
func (s *CertificateService) evaluate(ctx context.Context, course *models.Course, studentID string) (*models.Eligibility, error) {
	eligibility := &models.Eligibility{
		CourseID:             course.ID,
		StudentID:            studentID,
		PassingGrade:         course.PassingGrade,
		HasPassingGrade:      course.HasPassingGrade(),
		IneligibilityReasons: []string{},
	}

	enrollment, err := s.enrollments.FindByStudentAndCourse(ctx, studentID, course.ID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	eligibility.IsEnrolled = enrollment != nil && enrollment.Status == models.EnrollmentStatusActive

	summary, err := s.grades.OverallGrade(ctx, course.ID, studentID)
	if err != nil {
		return nil, err
	}
	eligibility.OverallGrade = summary.OverallGrade

	progress, err := s.courseProgress(ctx, course.ID, studentID)
	if err != nil {
		return nil, err
	}
	eligibility.CourseProgress = progress
	eligibility.IsCourseCompleted = progress == 100

	if eligibility.HasPassingGrade {
		eligibility.MeetsGradeRequirement = eligibility.OverallGrade >= *course.PassingGrade
	}

	existing, err := s.certificates.FindByCourseAndStudent(ctx, course.ID, studentID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing certificate")
	}
	eligibility.HasCertificate = existing != nil

	if !eligibility.IsEnrolled {
		eligibility.IneligibilityReasons = append(eligibility.IneligibilityReasons, "student is not actively enrolled in this course")
	}
	if !eligibility.HasPassingGrade {
		eligibility.IneligibilityReasons = append(eligibility.IneligibilityReasons, "course has no passing grade configured")
	}
	if eligibility.HasPassingGrade && !eligibility.MeetsGradeRequirement {
		eligibility.IneligibilityReasons = append(eligibility.IneligibilityReasons,
			fmt.Sprintf("overall grade %.2f is below the passing grade %.2f", eligibility.OverallGrade, *course.PassingGrade))
	}
	if !eligibility.IsCourseCompleted {
		eligibility.IneligibilityReasons = append(eligibility.IneligibilityReasons,
			fmt.Sprintf("course progress is %.2f%%, 100%% completion is required", eligibility.CourseProgress))
	}
	if eligibility.HasCertificate {
		eligibility.IneligibilityReasons = append(eligibility.IneligibilityReasons, "a certificate has already been issued for this student")
	}

	eligibility.IsEligible = len(eligibility.IneligibilityReasons) == 0
	return eligibility, nil
}

// courseProgress is (completed lessons + completed assignments) over
// (total lessons + total assignments), as a percentage.
func (s *CertificateService) courseProgress(ctx context.Context, courseID, studentID string) (float64, error) {
	structure, err := s.courses.Structure(ctx, courseID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course structure")
	}
	completedLessons, err := s.progress.CountCompletedByCourse(ctx, studentID, courseID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count completed lessons")
	}
	assignments, err := s.assignments.ListPublishedByCourse(ctx, courseID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	submissions, err := s.assignments.ListSubmissionsByStudent(ctx, courseID, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	submittedAssignments := make(map[string]struct{}, len(submissions))
	for _, submission := range submissions {
		submittedAssignments[submission.AssignmentID] = struct{}{}
	}
	completed := completedLessons + len(submittedAssignments)
	total := len(structure.Lessons) + len(assignments)
	if total == 0 {
		return 0, nil
	}
	return Round2(float64(completed) / float64(total) * 100), nil
}
