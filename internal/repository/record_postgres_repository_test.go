package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-marks/internal/models"
)

func newMarksMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRecordPostgresRepositoryLoad(t *testing.T) {
	db, mock, cleanup := newMarksMock(t)
	defer cleanup()
	repo := NewRecordPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"position", "code", "name", "cw1", "cw2", "cw3", "exam"}).
		AddRow(1, 1001, "Alice", 18, 17, 19, 80).
		AddRow(2, 1002, "Bob", 5, 5, 5, 20)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT position, code, name, cw1, cw2, cw3, exam FROM student_marks ORDER BY position ASC")).
		WillReturnRows(rows)

	marks, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, models.StudentMarks{Code: 1001, Name: "Alice", CW1: 18, CW2: 17, CW3: 19, Exam: 80}, marks[0])
	assert.Equal(t, 1002, marks[1].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgresRepositorySave(t *testing.T) {
	db, mock, cleanup := newMarksMock(t)
	defer cleanup()
	repo := NewRecordPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM student_marks").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO student_marks").
		WithArgs(1, 1002, "Bob", 5, 5, 5, 20).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_marks").
		WithArgs(2, 1001, "Alice", 18, 17, 19, 80).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), []models.StudentMarks{
		{Code: 1002, Name: "Bob", CW1: 5, CW2: 5, CW3: 5, Exam: 20},
		{Code: 1001, Name: "Alice", CW1: 18, CW2: 17, CW3: 19, Exam: 80},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgresRepositorySaveRollsBack(t *testing.T) {
	db, mock, cleanup := newMarksMock(t)
	defer cleanup()
	repo := NewRecordPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM student_marks").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO student_marks").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), []models.StudentMarks{{Code: 1, Name: "A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgresRepositoryEnsureSchema(t *testing.T) {
	db, mock, cleanup := newMarksMock(t)
	defer cleanup()
	repo := NewRecordPostgresRepository(db)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS student_marks").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
