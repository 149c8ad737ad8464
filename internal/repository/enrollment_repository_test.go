package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/orm-demo/internal/models"
)

const insertLinkQuery = "INSERT INTO studentscourses (student_id, course_id) VALUES ($1, $2) RETURNING id"

func TestEnrollmentRepositoryAssignBatch(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertLinkQuery)).WithArgs(int64(1), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(insertLinkQuery)).WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	links, err := repo.AssignBatch(context.Background(), 1, []int64{3, 2})
	require.NoError(t, err)
	assert.Equal(t, []models.StudentCourse{
		{ID: 1, StudentID: 1, CourseID: 3},
		{ID: 2, StudentID: 1, CourseID: 2},
	}, links)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryAssignBatchAllowsDuplicates(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertLinkQuery)).WithArgs(int64(4), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery(regexp.QuoteMeta(insertLinkQuery)).WithArgs(int64(4), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	links, err := repo.AssignBatch(context.Background(), 4, []int64{5, 5})
	require.NoError(t, err)
	assert.Len(t, links, 2)
	assert.NotEqual(t, links[0].ID, links[1].ID)
}

func TestEnrollmentRepositoryAssignBatchForeignKeyViolation(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	fk := &pq.Error{Code: "23503", Constraint: "studentscourses_student_id_fkey"}
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertLinkQuery)).WithArgs(int64(99), int64(1)).WillReturnError(fk)
	mock.ExpectRollback()

	_, err := repo.AssignBatch(context.Background(), 99, []int64{1})
	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, "studentscourses_student_id_fkey", pqErr.Constraint)
	assert.NoError(t, mock.ExpectationsWereMet())
}
