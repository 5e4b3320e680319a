package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/coursekit/lms-api/internal/models"
	appErrors "github.com/coursekit/lms-api/pkg/errors"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations. The (course_id, student_id) constraint on certificates is
// what makes issuance exactly-once under concurrency.
const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

// CertificateRepository handles certificate persistence.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository creates a new certificate repository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// FindByCourseAndStudent returns the certificate for the pair in any status.
func (r *CertificateRepository) FindByCourseAndStudent(ctx context.Context, courseID, studentID string) (*models.CourseCertificate, error) {
	const query = `SELECT id, course_id, student_id, issued_by, issued_at, final_grade, status, revoked_at, revoked_by, revocation_reason
        FROM course_certificates WHERE course_id = $1 AND student_id = $2`
	var cert models.CourseCertificate
	if err := r.db.GetContext(ctx, &cert, query, courseID, studentID); err != nil {
		return nil, err
	}
	return &cert, nil
}

// ListByCourse returns all certificates for a course keyed by student ID.
func (r *CertificateRepository) ListByCourse(ctx context.Context, courseID string) (map[string]models.CourseCertificate, error) {
	const query = `SELECT id, course_id, student_id, issued_by, issued_at, final_grade, status, revoked_at, revoked_by, revocation_reason
        FROM course_certificates WHERE course_id = $1`
	rows, err := r.db.QueryxContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()
	result := make(map[string]models.CourseCertificate)
	for rows.Next() {
		var cert models.CourseCertificate
		if err := rows.StructScan(&cert); err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		result[cert.StudentID] = cert
	}
	return result, rows.Err()
}

// Insert creates a certificate row. A unique violation on the
// (course_id, student_id) constraint comes back as the same Conflict
// error the eligibility pre-check yields, so concurrent issuance loses
// the race cleanly.
func (r *CertificateRepository) Insert(ctx context.Context, cert *models.CourseCertificate) error {
	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}
	if cert.IssuedAt.IsZero() {
		cert.IssuedAt = time.Now().UTC()
	}
	const query = `INSERT INTO course_certificates (id, course_id, student_id, issued_by, issued_at, final_grade, status)
        VALUES (:id, :course_id, :student_id, :issued_by, :issued_at, :final_grade, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, cert); err != nil {
		if IsUniqueViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "certificate already exists for this student")
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

// Revoke marks a certificate revoked. The row is never deleted.
func (r *CertificateRepository) Revoke(ctx context.Context, certID, revokedBy, reason string) error {
	const query = `UPDATE course_certificates
        SET status = $1, revoked_at = $2, revoked_by = $3, revocation_reason = $4
        WHERE id = $5`
	if _, err := r.db.ExecContext(ctx, query, models.CertificateStatusRevoked, time.Now().UTC(), revokedBy, reason, certID); err != nil {
		return fmt.Errorf("revoke certificate: %w", err)
	}
	return nil
}
