package models

import (
	"strings"
	"time"
)

// ExportFormat selects the rendered export type.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// SortOrder orders record listings by total mark. The zero value keeps storage order.
type SortOrder string

const (
	OrderNone       SortOrder = ""
	OrderAscending  SortOrder = "asc"
	OrderDescending SortOrder = "desc"
)

// ParseSortOrder accepts asc/desc and their initials, case-insensitively.
func ParseSortOrder(raw string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return OrderNone, true
	case "a", "asc", "ascending":
		return OrderAscending, true
	case "d", "desc", "descending":
		return OrderDescending, true
	default:
		return OrderNone, false
	}
}

// ExportFile is a rendered export ready to stream or store.
type ExportFile struct {
	Filename    string       `json:"filename"`
	Format      ExportFormat `json:"format"`
	ContentType string       `json:"content_type"`
	Records     int          `json:"records"`
	Payload     []byte       `json:"-"`
}

// ExportJobStatus captures background export lifecycle states.
type ExportJobStatus string

const (
	ExportJobQueued     ExportJobStatus = "QUEUED"
	ExportJobProcessing ExportJobStatus = "PROCESSING"
	ExportJobFinished   ExportJobStatus = "FINISHED"
	ExportJobFailed     ExportJobStatus = "FAILED"
)

// ExportJob tracks an export rendered and stored in the background.
type ExportJob struct {
	ID         string          `json:"id"`
	Format     ExportFormat    `json:"format"`
	Order      SortOrder       `json:"order,omitempty"`
	Status     ExportJobStatus `json:"status"`
	Filename   string          `json:"filename,omitempty"`
	Records    int             `json:"records"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// Done reports whether the job reached a terminal state.
func (j ExportJob) Done() bool {
	return j.Status == ExportJobFinished || j.Status == ExportJobFailed
}
