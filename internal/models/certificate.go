package models

import "time"

// CertificateStatus is the lifecycle state of a certificate.
type CertificateStatus string

// Certificate statuses. Revocation is terminal; the row is never deleted
// and never frees the (course, student) slot.
const (
	CertificateStatusActive  CertificateStatus = "ACTIVE"
	CertificateStatusRevoked CertificateStatus = "REVOKED"
)

// CourseCertificate records a completion certificate. FinalGrade is a
// snapshot frozen at issuance and never recomputed.
type CourseCertificate struct {
	ID               string            `db:"id" json:"id"`
	CourseID         string            `db:"course_id" json:"course_id"`
	StudentID        string            `db:"student_id" json:"student_id"`
	IssuedBy         string            `db:"issued_by" json:"issued_by"`
	IssuedAt         time.Time         `db:"issued_at" json:"issued_at"`
	FinalGrade       float64           `db:"final_grade" json:"final_grade"`
	Status           CertificateStatus `db:"status" json:"status"`
	RevokedAt        *time.Time        `db:"revoked_at" json:"revoked_at,omitempty"`
	RevokedBy        *string           `db:"revoked_by" json:"revoked_by,omitempty"`
	RevocationReason *string           `db:"revocation_reason" json:"revocation_reason,omitempty"`
}

// Eligibility is the computed certificate-readiness verdict. Reasons list
// every failing condition, never just the first.
type Eligibility struct {
	CourseID              string   `json:"course_id"`
	StudentID             string   `json:"student_id"`
	IsEligible            bool     `json:"is_eligible"`
	IsEnrolled            bool     `json:"is_enrolled"`
	HasPassingGrade       bool     `json:"has_passing_grade"`
	PassingGrade          *float64 `json:"passing_grade,omitempty"`
	OverallGrade          float64  `json:"overall_grade"`
	CourseProgress        float64  `json:"course_progress"`
	MeetsGradeRequirement bool     `json:"meets_grade_requirement"`
	IsCourseCompleted     bool     `json:"is_course_completed"`
	HasCertificate        bool     `json:"has_certificate"`
	IneligibilityReasons  []string `json:"ineligibility_reasons"`
}

// EligibleStudent is one entry in the eligible-students report.
type EligibleStudent struct {
	StudentID      string  `json:"student_id"`
	StudentName    string  `json:"student_name"`
	StudentNumber  string  `json:"student_number"`
	StudentEmail   string  `json:"student_email"`
	OverallGrade   float64 `json:"overall_grade"`
	CourseProgress float64 `json:"course_progress"`
}

// EligibleStudentsReport lists the students currently eligible for a
// certificate in a course.
type EligibleStudentsReport struct {
	CourseID        string            `json:"course_id"`
	TotalEnrolled   int               `json:"total_enrolled"`
	TotalEligible   int               `json:"total_eligible"`
	SkippedStudents int               `json:"skipped_students"`
	Students        []EligibleStudent `json:"students"`
}
