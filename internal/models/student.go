package models

import (
	"strconv"
	"strings"
)

// Mark limits for a single student record.
const (
	MaxCourseworkMark = 20
	MaxExamMark       = 100
	MaxTotalMark      = 3*MaxCourseworkMark + MaxExamMark
)

// LetterGrade is the A–F grade derived from a record's percentage.
type LetterGrade string

const (
	GradeA LetterGrade = "A"
	GradeB LetterGrade = "B"
	GradeC LetterGrade = "C"
	GradeD LetterGrade = "D"
	GradeF LetterGrade = "F"
)

// LetterGrades lists every grade from best to worst.
var LetterGrades = []LetterGrade{GradeA, GradeB, GradeC, GradeD, GradeF}

// StudentMarks holds the raw, authoritative fields of a student record.
type StudentMarks struct {
	Code int    `db:"code" json:"code" validate:"gt=0"`
	Name string `db:"name" json:"name" validate:"required,excludesall=0x2C\r\n"`
	CW1  int    `db:"cw1" json:"cw1" validate:"min=0,max=20"`
	CW2  int    `db:"cw2" json:"cw2" validate:"min=0,max=20"`
	CW3  int    `db:"cw3" json:"cw3" validate:"min=0,max=20"`
	Exam int    `db:"exam" json:"exam" validate:"min=0,max=100"`
}

// StudentRecord is a student's marks together with the fields derived from them.
type StudentRecord struct {
	StudentMarks
	TotalCoursework int         `json:"total_coursework"`
	TotalMark       int         `json:"total_mark"`
	Percentage      float64     `json:"percentage"`
	Grade           LetterGrade `json:"grade"`
}

// UpdatableField names a raw field that may be changed after creation.
type UpdatableField string

const (
	FieldName UpdatableField = "name"
	FieldCW1  UpdatableField = "cw1"
	FieldCW2  UpdatableField = "cw2"
	FieldCW3  UpdatableField = "cw3"
	FieldExam UpdatableField = "exam"
)

// UpdatableFields lists the fields accepted by record updates.
var UpdatableFields = []UpdatableField{FieldName, FieldCW1, FieldCW2, FieldCW3, FieldExam}

// Selector identifies records either by exact code or by name.
type Selector struct {
	Raw    string
	Code   int
	ByCode bool
}

// ParseSelector interprets raw as a code when it is an integer, otherwise as a name.
func ParseSelector(raw string) Selector {
	trimmed := strings.TrimSpace(raw)
	if code, err := strconv.Atoi(trimmed); err == nil {
		return Selector{Raw: trimmed, Code: code, ByCode: true}
	}
	return Selector{Raw: trimmed}
}

// Name returns the trimmed name query of a name selector.
func (s Selector) Name() string {
	if s.ByCode {
		return ""
	}
	return s.Raw
}

// ClassSummary aggregates the whole record list.
type ClassSummary struct {
	TotalStudents     int                 `json:"total_students"`
	AveragePercentage float64             `json:"average_percentage"`
	GradeDistribution map[LetterGrade]int `json:"grade_distribution"`
}

// RecordTable is what the front-ends display: a title, rows and an optional summary line.
type RecordTable struct {
	Title   string          `json:"title"`
	Records []StudentRecord `json:"records"`
	Summary string          `json:"summary,omitempty"`
	Class   *ClassSummary   `json:"class,omitempty"`
}

// LoadReport describes the outcome of reading the record source.
type LoadReport struct {
	Source  string `json:"source"`
	Loaded  int    `json:"loaded"`
	Skipped int    `json:"skipped"`
}
