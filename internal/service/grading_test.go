package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-marks/internal/models"
)

func TestRoundedPercentage(t *testing.T) {
	cases := map[int]float64{
		0:   0,
		35:  21.88,
		1:   0.62,
		3:   1.88,
		23:  14.37,
		49:  30.63,
		51:  31.87,
		87:  54.37,
		93:  58.13,
		112: 70,
		134: 83.75,
		159: 99.38,
		160: 100,
	}
	for total, want := range cases {
		assert.Equal(t, want, RoundedPercentage(total), "total %d", total)
	}
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		total int
		want  models.LetterGrade
	}{
		{111, models.GradeB},
		{112, models.GradeA},
		{95, models.GradeC},
		{96, models.GradeB},
		{79, models.GradeD},
		{80, models.GradeC},
		{63, models.GradeF},
		{64, models.GradeD},
	}
	for _, tc := range cases {
		rec := DeriveRecord(models.StudentMarks{Code: 1, Name: "X", Exam: tc.total - 60, CW1: 20, CW2: 20, CW3: 20})
		assert.Equal(t, tc.total, rec.TotalMark)
		assert.Equal(t, tc.want, rec.Grade, "total %d", tc.total)
	}
}

func TestGradeForPercentage(t *testing.T) {
	assert.Equal(t, models.GradeB, GradeForPercentage(69.99))
	assert.Equal(t, models.GradeA, GradeForPercentage(70))
	assert.Equal(t, models.GradeD, GradeForPercentage(40))
	assert.Equal(t, models.GradeF, GradeForPercentage(39.99))
}

func TestSummarizeClass(t *testing.T) {
	records := []models.StudentRecord{
		DeriveRecord(alice),
		DeriveRecord(bob),
	}
	summary := SummarizeClass(records)
	assert.Equal(t, 2, summary.TotalStudents)
	assert.Equal(t, 52.81, summary.AveragePercentage)
	assert.Equal(t, 1, summary.GradeDistribution[models.GradeA])
	assert.Equal(t, 1, summary.GradeDistribution[models.GradeF])
	assert.Equal(t, 0, summary.GradeDistribution[models.GradeC])

	tie := SummarizeClass([]models.StudentRecord{
		DeriveRecord(models.StudentMarks{Code: 1, Name: "A"}),
		DeriveRecord(models.StudentMarks{Code: 2, Name: "B", Exam: 10}),
	})
	assert.Equal(t, 3.12, tie.AveragePercentage)

	empty := SummarizeClass(nil)
	assert.Zero(t, empty.TotalStudents)
	assert.Zero(t, empty.AveragePercentage)
	assert.Len(t, empty.GradeDistribution, len(models.LetterGrades))
}
