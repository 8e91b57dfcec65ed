package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-marks/internal/models"
)

const viewCachePrefix = "marks:view:"

type recordReader interface {
	All() []models.StudentRecord
	Summary() models.ClassSummary
	Revision() uint64
	Lookup(query string) (models.StudentRecord, error)
	Extreme(wantMax bool) (models.StudentRecord, error)
	Sorted(ascending bool) []models.StudentRecord
}

// ViewService turns store reads into titled record tables, caching the
// whole-list views per store revision.
type ViewService struct {
	records  recordReader
	cache    *CacheService
	instance string
	ttl      time.Duration
	logger   *zap.Logger
}

// NewViewService constructs a ViewService. cache may be nil.
func NewViewService(records recordReader, cache *CacheService, ttl time.Duration, logger *zap.Logger) *ViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewService{records: records, cache: cache, instance: uuid.NewString(), ttl: ttl, logger: logger}
}

// Overview lists every record with the class summary line.
func (s *ViewService) Overview(ctx context.Context) (*models.RecordTable, error) {
	return s.cached(ctx, "overview", func() *models.RecordTable {
		records := s.records.All()
		summary := s.records.Summary()
		table := &models.RecordTable{Title: "All Student Records", Records: records, Class: &summary}
		if len(records) == 0 {
			table.Summary = "No student data available."
		} else {
			table.Summary = fmt.Sprintf("Total Students: %d | Average Overall Percentage: %.2f%%", summary.TotalStudents, summary.AveragePercentage)
		}
		return table
	}), nil
}

// Lookup shows the single record matching query.
func (s *ViewService) Lookup(ctx context.Context, query string) (*models.RecordTable, error) {
	rec, err := s.records.Lookup(query)
	if err != nil {
		return nil, err
	}
	return &models.RecordTable{Title: "Individual Record: " + rec.Name, Records: []models.StudentRecord{rec}}, nil
}

// Extreme shows the highest or lowest scoring student.
func (s *ViewService) Extreme(ctx context.Context, highest bool) (*models.RecordTable, error) {
	rec, err := s.records.Extreme(highest)
	if err != nil {
		return nil, err
	}
	title := "Lowest Overall Mark"
	if highest {
		title = "Highest Overall Mark"
	}
	return &models.RecordTable{
		Title:   title,
		Records: []models.StudentRecord{rec},
		Summary: fmt.Sprintf("Student: %s | Score: %d", rec.Name, rec.TotalMark),
	}, nil
}

// Sorted lists every record ordered by total mark.
func (s *ViewService) Sorted(ctx context.Context, ascending bool) (*models.RecordTable, error) {
	name, order := "sorted-desc", "Descending"
	if ascending {
		name, order = "sorted-asc", "Ascending"
	}
	return s.cached(ctx, name, func() *models.RecordTable {
		return &models.RecordTable{
			Title:   fmt.Sprintf("Records Sorted (%s by Total Mark)", order),
			Records: s.records.Sorted(ascending),
		}
	}), nil
}

// Single wraps one record in a table, used to echo mutations.
func (s *ViewService) Single(title string, rec models.StudentRecord) *models.RecordTable {
	return &models.RecordTable{Title: title, Records: []models.StudentRecord{rec}}
}

// Invalidate drops every cached view of this process.
func (s *ViewService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, s.keyPrefix()+"*")
}

func (s *ViewService) cached(ctx context.Context, name string, build func() *models.RecordTable) *models.RecordTable {
	key := fmt.Sprintf("%s%s:r%d", s.keyPrefix(), name, s.records.Revision())
	var table models.RecordTable
	if s.cache.Get(ctx, key, &table) {
		return &table
	}
	fresh := build()
	s.cache.Set(ctx, key, fresh, s.ttl)
	return fresh
}

func (s *ViewService) keyPrefix() string {
	return viewCachePrefix + s.instance + ":"
}
