package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/noah-isme/sma-marks/internal/models"
)

// CreateRecordRequest is the payload for adding a student. Marks are pointers so
// that an omitted mark is distinguishable from zero.
type CreateRecordRequest struct {
	Code *int   `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
	CW1  *int   `json:"cw1" binding:"required"`
	CW2  *int   `json:"cw2" binding:"required"`
	CW3  *int   `json:"cw3" binding:"required"`
	Exam *int   `json:"exam" binding:"required"`
}

// Marks converts the request into raw student marks.
func (r CreateRecordRequest) Marks() models.StudentMarks {
	return models.StudentMarks{
		Code: deref(r.Code),
		Name: r.Name,
		CW1:  deref(r.CW1),
		CW2:  deref(r.CW2),
		CW3:  deref(r.CW3),
		Exam: deref(r.Exam),
	}
}

// UpdateRecordRequest changes a single field of a student record.
type UpdateRecordRequest struct {
	Field string          `json:"field" binding:"required"`
	Value json.RawMessage `json:"value" binding:"required"`
}

// RawValue returns the value as text whether it was sent as a JSON string or number.
func (r UpdateRecordRequest) RawValue() string {
	var s string
	if err := json.Unmarshal(r.Value, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(r.Value))
}

// DeleteRecordResponse reports how many records a delete removed.
type DeleteRecordResponse struct {
	Selector string `json:"selector"`
	Removed  int    `json:"removed"`
}

// PunchlineResponse wraps a revealed punchline.
type PunchlineResponse struct {
	Punchline string `json:"punchline"`
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// String is used in log lines.
func (r UpdateRecordRequest) String() string {
	return fmt.Sprintf("%s=%s", r.Field, r.RawValue())
}

// CreateExportJobRequest queues a background export.
type CreateExportJobRequest struct {
	Format string `json:"format" binding:"required"`
	Order  string `json:"order"`
}

// ExportFilesResponse lists exports stored on disk.
type ExportFilesResponse struct {
	Files []string `json:"files"`
}

// LoginRequest exchanges the admin password for a bearer token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}
