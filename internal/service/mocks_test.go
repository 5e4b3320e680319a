package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/coursekit/lms-api/internal/models"
)

type stubCourses struct {
	courses    map[string]*models.Course
	structures map[string]*models.CourseStructure
	lessons    map[string]*models.Lesson
}

func (s *stubCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := s.courses[id]; ok {
		return course, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubCourses) FindOwned(ctx context.Context, id, instructorID string) (*models.Course, error) {
	course, ok := s.courses[id]
	if !ok || course.InstructorID != instructorID {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func (s *stubCourses) Structure(ctx context.Context, courseID string) (*models.CourseStructure, error) {
	if structure, ok := s.structures[courseID]; ok {
		return structure, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubCourses) FindLesson(ctx context.Context, lessonID string) (*models.Lesson, error) {
	if lesson, ok := s.lessons[lessonID]; ok {
		return lesson, nil
	}
	return nil, sql.ErrNoRows
}

type stubEnrollments struct {
	enrollments map[string]*models.Enrollment
	roster      []models.EnrollmentDetail
	rosterErr   error
}

func enrollmentKey(studentID, courseID string) string {
	return studentID + ":" + courseID
}

func (s *stubEnrollments) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	if enrollment, ok := s.enrollments[enrollmentKey(studentID, courseID)]; ok {
		return enrollment, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubEnrollments) ListActiveByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	if s.rosterErr != nil {
		return nil, s.rosterErr
	}
	return s.roster, nil
}

type stubAssignments struct {
	assignments   []models.Assignment
	submissions   map[string][]models.Submission
	listErr       error
	courseListErr error
}

func (s *stubAssignments) ListPublishedByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.assignments, nil
}

func (s *stubAssignments) ListSubmissionsByStudent(ctx context.Context, courseID, studentID string) ([]models.Submission, error) {
	return s.submissions[studentID], nil
}

func (s *stubAssignments) ListSubmissionsByCourse(ctx context.Context, courseID string) (map[string][]models.Submission, error) {
	if s.courseListErr != nil {
		return nil, s.courseListErr
	}
	return s.submissions, nil
}

type stubWeightsRepo struct {
	stored  map[string]*models.GradeWeights
	upserts int
}

func (s *stubWeightsRepo) FindByCourse(ctx context.Context, courseID string) (*models.GradeWeights, error) {
	if weights, ok := s.stored[courseID]; ok {
		return weights, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubWeightsRepo) Upsert(ctx context.Context, weights *models.GradeWeights) error {
	if s.stored == nil {
		s.stored = make(map[string]*models.GradeWeights)
	}
	s.upserts++
	copied := *weights
	s.stored[weights.CourseID] = &copied
	return nil
}

type stubWeightsResolver struct {
	weights models.GradeWeights
	err     error
}

func (s *stubWeightsResolver) Resolve(ctx context.Context, courseID string) (*models.GradeWeights, error) {
	if s.err != nil {
		return nil, s.err
	}
	weights := s.weights
	return &weights, nil
}

type stubProgressRepo struct {
	rows     map[string]map[string]models.LessonProgress
	upserted []models.LessonProgress
}

func (s *stubProgressRepo) ListByStudentAndCourse(ctx context.Context, studentID, courseID string) (map[string]models.LessonProgress, error) {
	result := make(map[string]models.LessonProgress)
	for lessonID, row := range s.rows[studentID] {
		result[lessonID] = row
	}
	return result, nil
}

func (s *stubProgressRepo) CountCompletedByCourse(ctx context.Context, studentID, courseID string) (int, error) {
	count := 0
	for _, row := range s.rows[studentID] {
		if row.IsCompleted {
			count++
		}
	}
	return count, nil
}

func (s *stubProgressRepo) Upsert(ctx context.Context, progress *models.LessonProgress) error {
	if s.rows == nil {
		s.rows = make(map[string]map[string]models.LessonProgress)
	}
	if s.rows[progress.StudentID] == nil {
		s.rows[progress.StudentID] = make(map[string]models.LessonProgress)
	}
	if progress.ID == "" {
		progress.ID = "lp-" + progress.LessonID
	}
	progress.UpdatedAt = time.Now().UTC()
	s.rows[progress.StudentID][progress.LessonID] = *progress
	s.upserted = append(s.upserted, *progress)
	return nil
}

type stubGradeCalc struct {
	summaries map[string]*models.GradeSummary
	errs      map[string]error
}

func (s *stubGradeCalc) OverallGrade(ctx context.Context, courseID, studentID string) (*models.GradeSummary, error) {
	if err, ok := s.errs[studentID]; ok {
		return nil, err
	}
	if summary, ok := s.summaries[studentID]; ok {
		return summary, nil
	}
	return &models.GradeSummary{CourseID: courseID, StudentID: studentID}, nil
}

type stubCertificates struct {
	certs     map[string]*models.CourseCertificate
	insertErr error
	inserted  []models.CourseCertificate
}

func (s *stubCertificates) FindByCourseAndStudent(ctx context.Context, courseID, studentID string) (*models.CourseCertificate, error) {
	if cert, ok := s.certs[studentID]; ok {
		return cert, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubCertificates) ListByCourse(ctx context.Context, courseID string) (map[string]models.CourseCertificate, error) {
	result := make(map[string]models.CourseCertificate)
	for studentID, cert := range s.certs {
		result[studentID] = *cert
	}
	return result, nil
}

func (s *stubCertificates) Insert(ctx context.Context, cert *models.CourseCertificate) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	if s.certs == nil {
		s.certs = make(map[string]*models.CourseCertificate)
	}
	if cert.ID == "" {
		cert.ID = "cert-" + cert.StudentID
	}
	cert.IssuedAt = time.Now().UTC()
	copied := *cert
	s.certs[cert.StudentID] = &copied
	s.inserted = append(s.inserted, copied)
	return nil
}

func (s *stubCertificates) Revoke(ctx context.Context, certID, revokedBy, reason string) error {
	for _, cert := range s.certs {
		if cert.ID == certID {
			now := time.Now().UTC()
			cert.Status = models.CertificateStatusRevoked
			cert.RevokedAt = &now
			cert.RevokedBy = &revokedBy
			cert.RevocationReason = &reason
			return nil
		}
	}
	return sql.ErrNoRows
}

func floatPtr(v float64) *float64 {
	return &v
}
