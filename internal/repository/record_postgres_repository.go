package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-marks/internal/models"
)

const studentMarksSchema = `CREATE TABLE IF NOT EXISTS student_marks (
    position INTEGER NOT NULL,
    code INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    cw1 SMALLINT NOT NULL,
    cw2 SMALLINT NOT NULL,
    cw3 SMALLINT NOT NULL,
    exam SMALLINT NOT NULL
)`

type studentMarksRow struct {
	Position int `db:"position"`
	models.StudentMarks
}

// RecordPostgresRepository stores the ordered student list in a single table.
type RecordPostgresRepository struct {
	db *sqlx.DB
}

// NewRecordPostgresRepository constructs a RecordPostgresRepository.
func NewRecordPostgresRepository(db *sqlx.DB) *RecordPostgresRepository {
	return &RecordPostgresRepository{db: db}
}

// Location names the backing table.
func (r *RecordPostgresRepository) Location() string {
	return "postgres:student_marks"
}

// EnsureSchema creates the student_marks table when absent.
func (r *RecordPostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, studentMarksSchema); err != nil {
		return fmt.Errorf("ensure student_marks schema: %w", err)
	}
	return nil
}

// Load returns every stored student in list order. An empty table is an empty list.
func (r *RecordPostgresRepository) Load(ctx context.Context) ([]models.StudentMarks, error) {
	const query = `SELECT position, code, name, cw1, cw2, cw3, exam FROM student_marks ORDER BY position ASC`
	var rows []studentMarksRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load student marks: %w", err)
	}
	marks := make([]models.StudentMarks, len(rows))
	for i, row := range rows {
		marks[i] = row.StudentMarks
	}
	return marks, nil
}

// Save replaces the table contents with marks inside one transaction.
func (r *RecordPostgresRepository) Save(ctx context.Context, marks []models.StudentMarks) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin student marks tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM student_marks`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear student marks: %w", err)
	}
	const insert = `INSERT INTO student_marks (position, code, name, cw1, cw2, cw3, exam)
VALUES (:position, :code, :name, :cw1, :cw2, :cw3, :exam)`
	for i, m := range marks {
		if _, err := tx.NamedExecContext(ctx, insert, studentMarksRow{Position: i + 1, StudentMarks: m}); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert student %d: %w", m.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit student marks tx: %w", err)
	}
	return nil
}
