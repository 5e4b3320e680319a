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
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositoryFindOwned(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "instructor_id", "title", "section", "passing_grade", "is_published", "created_at", "updated_at"}).
		AddRow("c1", "inst1", "Algorithms", "A", 75.0, true, time.Now(), time.Now())
	mock.ExpectQuery("FROM courses WHERE id = \\$1 AND instructor_id = \\$2").
		WithArgs("c1", "inst1").
		WillReturnRows(rows)

	course, err := repo.FindOwned(context.Background(), "c1", "inst1")
	require.NoError(t, err)
	assert.Equal(t, "c1", course.ID)
	require.NotNil(t, course.PassingGrade)
	assert.Equal(t, 75.0, *course.PassingGrade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindOwnedForeignCourse(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("FROM courses WHERE id = \\$1 AND instructor_id = \\$2").
		WithArgs("c1", "intruder").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindOwned(context.Background(), "c1", "intruder")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryStructure(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	moduleRows := sqlmock.NewRows([]string{"id", "course_id", "title", "position"}).
		AddRow("m1", "c1", "Module One", 1).
		AddRow("m2", "c1", "Module Two", 2)
	mock.ExpectQuery("FROM course_modules").
		WithArgs("c1").
		WillReturnRows(moduleRows)

	lessonRows := sqlmock.NewRows([]string{"id", "module_id", "course_id", "title", "position"}).
		AddRow("l1", "m1", "c1", "Intro", 1).
		AddRow("l2", "m1", "c1", "Basics", 2).
		AddRow("l3", "m2", "c1", "Advanced", 1)
	mock.ExpectQuery("FROM lessons l").
		WithArgs("c1").
		WillReturnRows(lessonRows)

	structure, err := repo.Structure(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, structure.Modules, 2)
	assert.Len(t, structure.Lessons, 3)
	assert.Len(t, structure.LessonsByModule("m1"), 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindLesson(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "module_id", "course_id", "title", "position"}).
		AddRow("l1", "m1", "c1", "Intro", 1)
	mock.ExpectQuery("FROM lessons l").
		WithArgs("l1").
		WillReturnRows(rows)

	lesson, err := repo.FindLesson(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "c1", lesson.CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
