package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sma-marks/internal/models"
)

func writeMarksFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "studentMarks.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRecordFileRepositoryLoad(t *testing.T) {
	path := writeMarksFile(t, "3\n1001,Alice,18,17,19,80\n\n1002, Bob ,5,5,5,20\n")
	repo := NewRecordFileRepository(path, zap.NewNop())

	marks, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, models.StudentMarks{Code: 1001, Name: "Alice", CW1: 18, CW2: 17, CW3: 19, Exam: 80}, marks[0])
	assert.Equal(t, "Bob", marks[1].Name)
}

func TestRecordFileRepositoryLoadSkipsMalformedLines(t *testing.T) {
	path := writeMarksFile(t, "4\n1001,Alice,18,17,19,80\n1002,Bob,5,5\nabc,Carol,1,2,3,4\n1004,Dan,1,2,3,4\n")
	core, logs := observer.New(zap.WarnLevel)
	repo := NewRecordFileRepository(path, zap.New(core))

	marks, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, 1001, marks[0].Code)
	assert.Equal(t, 1004, marks[1].Code)

	entries := logs.FilterMessage("skipping malformed student line").All()
	require.Len(t, entries, 2)
	assert.EqualValues(t, 3, entries[0].ContextMap()["line"])
	assert.EqualValues(t, 4, entries[1].ContextMap()["line"])
}

func TestRecordFileRepositoryLoadMissingFile(t *testing.T) {
	repo := NewRecordFileRepository(filepath.Join(t.TempDir(), "absent.txt"), nil)

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestRecordFileRepositoryLoadHeaderOnly(t *testing.T) {
	repo := NewRecordFileRepository(writeMarksFile(t, "0\n"), nil)

	marks, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, marks)
}

func TestRecordFileRepositorySaveRoundTrip(t *testing.T) {
	path := writeMarksFile(t, "0\n")
	repo := NewRecordFileRepository(path, nil)
	want := []models.StudentMarks{
		{Code: 1002, Name: "Bob", CW1: 5, CW2: 5, CW3: 5, Exam: 20},
		{Code: 1001, Name: "Alice Smith", CW1: 18, CW2: 17, CW3: 19, Exam: 80},
	}

	require.NoError(t, repo.Save(context.Background(), want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2\n1002,Bob,5,5,5,20\n1001,Alice Smith,18,17,19,80\n", string(raw))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRecordFileRepositorySaveFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "studentMarks.txt")
	repo := NewRecordFileRepository(path, nil)

	err := repo.Save(context.Background(), []models.StudentMarks{{Code: 1, Name: "A"}})
	assert.Error(t, err)
}

func TestParseMarksLine(t *testing.T) {
	cases := []struct {
		name    string
		line    string
		wantErr bool
	}{
		{name: "valid", line: "1001,Alice,18,17,19,80"},
		{name: "padded", line: " 1001 , Alice , 18 ,17,19, 80"},
		{name: "too few fields", line: "1001,Alice,18,17,19", wantErr: true},
		{name: "extra comma in name", line: "1001,Smith, Alice,18,17,19,80", wantErr: true},
		{name: "non numeric mark", line: "1001,Alice,x,17,19,80", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := ParseMarksLine(tc.line)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StudentMarks{Code: 1001, Name: "Alice", CW1: 18, CW2: 17, CW3: 19, Exam: 80}, m)
		})
	}
}

func TestFormatMarksLine(t *testing.T) {
	line := FormatMarksLine(models.StudentMarks{Code: 7, Name: "Zoe", CW1: 1, CW2: 2, CW3: 3, Exam: 4})
	assert.Equal(t, "7,Zoe,1,2,3,4", line)
}
