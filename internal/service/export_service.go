package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
	"github.com/noah-isme/sma-marks/pkg/export"
)

var exportHeaders = []string{"CODE", "NAME", "CW TOTAL", "EXAM", "PERCENTAGE", "GRADE"}

type tableSource interface {
	Overview(ctx context.Context) (*models.RecordTable, error)
	Sorted(ctx context.Context, ascending bool) (*models.RecordTable, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders record tables to CSV or PDF and optionally stores them.
type ExportService struct {
	tables  tableSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService. storage may be nil when exports
// are only streamed.
func NewExportService(tables tableSource, storage fileStorage, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter(1, 3, 1.2, 1, 1.4, 1)
	}
	return &ExportService{tables: tables, storage: storage, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ParseFormat validates a user-supplied export format.
func ParseFormat(raw string) (models.ExportFormat, error) {
	switch f := models.ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case models.ExportCSV, models.ExportPDF:
		return f, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q; expected csv or pdf", raw))
	}
}

// Render builds the export for the current records in the requested order.
func (s *ExportService) Render(ctx context.Context, format models.ExportFormat, order models.SortOrder) (*models.ExportFile, error) {
	return s.render(ctx, format, order, "")
}

func (s *ExportService) render(ctx context.Context, format models.ExportFormat, order models.SortOrder, tag string) (*models.ExportFile, error) {
	table, err := s.table(ctx, order)
	if err != nil {
		return nil, err
	}
	dataset := DatasetFromTable(table)

	var payload []byte
	switch format {
	case models.ExportCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &models.ExportFile{
		Filename:    s.filename(format, order, tag),
		Format:      format,
		ContentType: format.ContentType(),
		Records:     len(table.Records),
		Payload:     payload,
	}, nil
}

// Save renders the export and writes it to storage, returning the stored path.
func (s *ExportService) Save(ctx context.Context, format models.ExportFormat, order models.SortOrder) (*models.ExportFile, string, error) {
	return s.SaveTagged(ctx, format, order, "")
}

// SaveTagged is Save with tag appended to the file name, so exports started in
// the same second get distinct files.
func (s *ExportService) SaveTagged(ctx context.Context, format models.ExportFormat, order models.SortOrder, tag string) (*models.ExportFile, string, error) {
	if s.storage == nil {
		return nil, "", appErrors.Clone(appErrors.ErrInternal, "export storage is not configured")
	}
	file, err := s.render(ctx, format, order, tag)
	if err != nil {
		return nil, "", err
	}
	path, err := s.storage.Save(file.Filename, file.Payload)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrPersistenceFailed.Code, appErrors.ErrPersistenceFailed.Status, "failed to store export")
	}
	s.logger.Info("export stored", zap.String("path", path), zap.String("format", string(format)), zap.Int("records", file.Records))
	return file, path, nil
}

func (s *ExportService) table(ctx context.Context, order models.SortOrder) (*models.RecordTable, error) {
	switch order {
	case models.OrderAscending:
		return s.tables.Sorted(ctx, true)
	case models.OrderDescending:
		return s.tables.Sorted(ctx, false)
	default:
		return s.tables.Overview(ctx)
	}
}

func (s *ExportService) filename(format models.ExportFormat, order models.SortOrder, tag string) string {
	name := "student_marks"
	if order != models.OrderNone {
		name += "_" + string(order)
	}
	name += "_" + s.now().UTC().Format("20060102_150405")
	if tag != "" {
		name += "_" + tag
	}
	return name + "." + string(format)
}

// DatasetFromTable flattens a record table into export rows.
func DatasetFromTable(table *models.RecordTable) export.Dataset {
	rows := make([][]string, 0, len(table.Records))
	for _, r := range table.Records {
		rows = append(rows, []string{
			strconv.Itoa(r.Code),
			r.Name,
			strconv.Itoa(r.TotalCoursework),
			strconv.Itoa(r.Exam),
			strconv.FormatFloat(r.Percentage, 'f', 2, 64),
			string(r.Grade),
		})
	}
	return export.Dataset{Title: table.Title, Headers: exportHeaders, Rows: rows, Footer: table.Summary}
}
