package service

import (
	"strconv"

	"github.com/noah-isme/sma-marks/internal/models"
)

// DeriveRecord computes every derived field from the raw marks.
func DeriveRecord(marks models.StudentMarks) models.StudentRecord {
	coursework := marks.CW1 + marks.CW2 + marks.CW3
	total := coursework + marks.Exam
	return models.StudentRecord{
		StudentMarks:    marks,
		TotalCoursework: coursework,
		TotalMark:       total,
		Percentage:      RoundedPercentage(total),
		Grade:           GradeForPercentage(percentageOf(total)),
	}
}

// RoundedPercentage converts a total mark into a percentage of MaxTotalMark rounded
// to two decimals. The float quotient is rounded as stored, so 23/160*100
// (14.374999...) becomes 14.37.
func RoundedPercentage(total int) float64 {
	return round2(percentageOf(total))
}

// round2 rounds the exact binary value of x to two decimals, ties to even.
func round2(x float64) float64 {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	return rounded
}

// GradeForPercentage maps a percentage onto the A–F scale.
func GradeForPercentage(percentage float64) models.LetterGrade {
	switch {
	case percentage >= 70:
		return models.GradeA
	case percentage >= 60:
		return models.GradeB
	case percentage >= 50:
		return models.GradeC
	case percentage >= 40:
		return models.GradeD
	default:
		return models.GradeF
	}
}

func percentageOf(total int) float64 {
	return float64(total) / models.MaxTotalMark * 100
}

// SummarizeClass computes the class-wide totals shown alongside the full listing.
func SummarizeClass(records []models.StudentRecord) models.ClassSummary {
	summary := models.ClassSummary{
		TotalStudents:     len(records),
		GradeDistribution: make(map[models.LetterGrade]int, len(models.LetterGrades)),
	}
	for _, g := range models.LetterGrades {
		summary.GradeDistribution[g] = 0
	}
	if len(records) == 0 {
		return summary
	}
	sum := 0
	for _, r := range records {
		sum += r.TotalMark
		summary.GradeDistribution[r.Grade]++
	}
	avg := float64(sum) / float64(len(records)*models.MaxTotalMark) * 100
	summary.AveragePercentage = round2(avg)
	return summary
}
