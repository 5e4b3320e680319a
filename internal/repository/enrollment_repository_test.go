package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursekit/lms-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryFindByStudentAndCourse(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "status", "enrolled_at"}).
		AddRow("e1", "stu1", "c1", "ACTIVE", time.Now())
	mock.ExpectQuery("FROM enrollments WHERE student_id = \\$1 AND course_id = \\$2").
		WithArgs("stu1", "c1").
		WillReturnRows(rows)

	enrollment, err := repo.FindByStudentAndCourse(context.Background(), "stu1", "c1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindMissingPassesThroughNoRows(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("FROM enrollments").
		WithArgs("stu1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByStudentAndCourse(context.Background(), "stu1", "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListActiveByCourse(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "status", "enrolled_at", "student_name", "student_number", "student_email", "section"}).
		AddRow("e1", "stu1", "c1", "ACTIVE", time.Now(), "Ada Lovelace", "1001", "ada@example.edu", "A").
		AddRow("e2", "stu2", "c1", "ACTIVE", time.Now(), "Grace Hopper", "1002", "grace@example.edu", "A")
	mock.ExpectQuery("FROM enrollments e").
		WithArgs("c1", models.EnrollmentStatusActive).
		WillReturnRows(rows)

	enrollments, err := repo.ListActiveByCourse(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	assert.Equal(t, "Ada Lovelace", enrollments[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
