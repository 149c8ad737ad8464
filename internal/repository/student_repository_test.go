package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/orm-demo/internal/models"
)

const insertStudentQuery = "INSERT INTO students (first_name, last_name, enrollment_date) VALUES ($1, $2, $3) RETURNING id"

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func date(raw string) time.Time {
	d, _ := time.Parse("2006-01-02", raw)
	return d
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertStudentQuery)).
		WithArgs("John", "Smith", date("2021-08-13")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	student := &models.Student{FirstName: "John", LastName: "Smith", EnrollmentDate: date("2021-08-13")}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, int64(1), student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateBatchKeepsOrder(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	input := []models.Student{
		{FirstName: "Alice", LastName: "Black", EnrollmentDate: date("2021-08-01")},
		{FirstName: "Peter", LastName: "Brown", EnrollmentDate: date("2021-07-28")},
		{FirstName: "Fred", LastName: "Green", EnrollmentDate: date("2021-08-13")},
	}

	mock.ExpectBegin()
	for i, s := range input {
		mock.ExpectQuery(regexp.QuoteMeta(insertStudentQuery)).
			WithArgs(s.FirstName, s.LastName, s.EnrollmentDate).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(i + 2))
	}
	mock.ExpectCommit()

	created, err := repo.CreateBatch(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, created, len(input))
	for i := range input {
		assert.Equal(t, input[i].FirstName, created[i].FirstName)
		assert.Equal(t, int64(i+2), created[i].ID)
		assert.Zero(t, input[i].ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateBatchRollsBack(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	boom := errors.New("insert failed")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertStudentQuery)).WillReturnError(boom)
	mock.ExpectRollback()

	created, err := repo.CreateBatch(context.Background(), []models.Student{{FirstName: "Alice"}})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "enrollment_date"}).
		AddRow(1, "Alice", "Black", date("2021-08-01")).
		AddRow(2, "Peter", "Brown", date("2021-07-28"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id, s.first_name, s.last_name, s.enrollment_date FROM students s ORDER BY s.id")).
		WillReturnRows(rows)

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Peter", students[1].FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListEmpty(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM students s ORDER BY s.id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "enrollment_date"}))

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestStudentRepositoryCount(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestStudentRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students s WHERE s.id = $1")).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	student, err := repo.FindByID(context.Background(), 9)
	assert.Nil(t, student)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
