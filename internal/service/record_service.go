package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
)

type recordBackend interface {
	Load(ctx context.Context) ([]models.StudentMarks, error)
	Save(ctx context.Context, marks []models.StudentMarks) error
	Location() string
}

// RecordService owns the in-memory student record list and keeps the backing
// store in step with it. Every mutation rewrites the whole collection.
type RecordService struct {
	mu       sync.RWMutex
	records  []models.StudentRecord
	revision uint64

	backend   recordBackend
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewRecordService constructs the record service. The list stays empty until Load.
func NewRecordService(backend recordBackend, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *RecordService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{backend: backend, validator: validate, logger: logger, metrics: metrics}
}

// Load replaces the in-memory list with the backend contents. Rows that fail
// validation or repeat an earlier code are skipped with a warning. The write
// lock is held across the backend read.
func (s *RecordService) Load(ctx context.Context) (*models.LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.backend.Load(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Wrap(err, appErrors.ErrDataFileMissing.Code, appErrors.ErrDataFileMissing.Status,
				fmt.Sprintf("data file %q not found", s.backend.Location()))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student records")
	}

	records := make([]models.StudentRecord, 0, len(rows))
	seen := make(map[int]struct{}, len(rows))
	skipped := 0
	for i, row := range rows {
		row.Name = strings.TrimSpace(row.Name)
		if err := s.validator.Struct(row); err != nil {
			skipped++
			s.logger.Warn("skipping invalid student record", zap.Int("row", i+1), zap.Int("code", row.Code), zap.String("reason", validationMessage(err)))
			continue
		}
		if _, dup := seen[row.Code]; dup {
			skipped++
			s.logger.Warn("skipping duplicate student code", zap.Int("row", i+1), zap.Int("code", row.Code))
			continue
		}
		seen[row.Code] = struct{}{}
		records = append(records, DeriveRecord(row))
	}

	s.records = records
	s.revision++
	s.metrics.SetRecordCount(len(records))

	report := &models.LoadReport{Source: s.backend.Location(), Loaded: len(records), Skipped: skipped}
	s.logger.Info("student records loaded", zap.String("source", report.Source), zap.Int("loaded", report.Loaded), zap.Int("skipped", report.Skipped))
	return report, nil
}

// Reload re-reads the backend. On failure the current list is kept.
func (s *RecordService) Reload(ctx context.Context) (*models.LoadReport, error) {
	return s.Load(ctx)
}

// Save writes the current list to the backend in its in-memory order.
func (s *RecordService) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// All returns a copy of every record in storage order.
func (s *RecordService) All() []models.StudentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.StudentRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Summary computes the class summary over the current list.
func (s *RecordService) Summary() models.ClassSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SummarizeClass(s.records)
}

// Revision increases with every load and successful in-memory mutation.
func (s *RecordService) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// FindByCode returns the record with the exact code.
func (s *RecordService) FindByCode(code int) (models.StudentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexByCodeLocked(code); i >= 0 {
		return s.records[i], true
	}
	return models.StudentRecord{}, false
}

// FindByNameSubstring returns the first record whose name contains text, ignoring case.
func (s *RecordService) FindByNameSubstring(text string) (models.StudentRecord, bool) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return models.StudentRecord{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			return r, true
		}
	}
	return models.StudentRecord{}, false
}

// Lookup finds a record by exact code when query is an integer, otherwise by name substring.
func (s *RecordService) Lookup(query string) (models.StudentRecord, error) {
	sel := models.ParseSelector(query)
	var (
		rec   models.StudentRecord
		found bool
	)
	if sel.ByCode {
		rec, found = s.FindByCode(sel.Code)
	} else {
		rec, found = s.FindByNameSubstring(sel.Raw)
	}
	if !found {
		return models.StudentRecord{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no student found matching %q", sel.Raw))
	}
	return rec, nil
}

// Add appends a new record and persists the list.
func (s *RecordService) Add(ctx context.Context, marks models.StudentMarks) (models.StudentRecord, error) {
	marks.Name = strings.TrimSpace(marks.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexByCodeLocked(marks.Code) >= 0 {
		s.metrics.ObserveMutation("add", false)
		return models.StudentRecord{}, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student code %d already exists", marks.Code))
	}
	if err := s.validator.Struct(marks); err != nil {
		s.metrics.ObserveMutation("add", false)
		return models.StudentRecord{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}

	record := DeriveRecord(marks)
	s.records = append(s.records, record)
	s.revision++
	s.logger.Info("student record added", zap.Int("code", record.Code), zap.String("name", record.Name))

	return record, s.commitLocked(ctx, "add")
}

// Delete removes every record matching the selector: exact code, or exact name.
func (s *RecordService) Delete(ctx context.Context, sel models.Selector) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]models.StudentRecord, 0, len(s.records))
	for _, r := range s.records {
		if sel.ByCode && r.Code == sel.Code || !sel.ByCode && r.Name == sel.Name() {
			continue
		}
		kept = append(kept, r)
	}
	removed := len(s.records) - len(kept)
	if removed == 0 {
		s.metrics.ObserveMutation("delete", false)
		by := "name"
		if sel.ByCode {
			by = "code"
		}
		return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no student found with matching %s %q", by, sel.Raw))
	}

	s.records = kept
	s.revision++
	s.logger.Info("student records deleted", zap.String("selector", sel.Raw), zap.Int("removed", removed))

	return removed, s.commitLocked(ctx, "delete")
}

// Update replaces one raw field of the selected record and recomputes its derived
// fields. Writing the value already stored is a no-op.
func (s *RecordService) Update(ctx context.Context, sel models.Selector, field models.UpdatableField, value string) (models.StudentRecord, error) {
	set, ok := fieldSetters[field]
	if !ok {
		return models.StudentRecord{}, appErrors.Clone(appErrors.ErrUnknownField, fmt.Sprintf("unknown field %q", field))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexBySelectorLocked(sel)
	if idx < 0 {
		s.metrics.ObserveMutation("update", false)
		return models.StudentRecord{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no student found matching %q", sel.Raw))
	}

	current := s.records[idx]
	candidate := current.StudentMarks
	if err := set(&candidate, value); err != nil {
		s.metrics.ObserveMutation("update", false)
		return models.StudentRecord{}, err
	}
	if err := s.validator.Struct(candidate); err != nil {
		s.metrics.ObserveMutation("update", false)
		return models.StudentRecord{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	if candidate == current.StudentMarks {
		s.logger.Debug("student record unchanged", zap.Int("code", current.Code), zap.String("field", string(field)))
		return current, nil
	}

	updated := DeriveRecord(candidate)
	s.records[idx] = updated
	s.revision++
	s.logger.Info("student record updated", zap.Int("code", updated.Code), zap.String("field", string(field)))

	return updated, s.commitLocked(ctx, "update")
}

// Extreme returns the record with the highest (wantMax) or lowest total mark.
// Ties resolve to the earliest record.
func (s *RecordService) Extreme(wantMax bool) (models.StudentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return models.StudentRecord{}, appErrors.Clone(appErrors.ErrNotFound, "no student data available")
	}
	best := s.records[0]
	for _, r := range s.records[1:] {
		if wantMax && r.TotalMark > best.TotalMark || !wantMax && r.TotalMark < best.TotalMark {
			best = r
		}
	}
	return best, nil
}

// Sorted returns the records stably ordered by total mark.
func (s *RecordService) Sorted(ascending bool) []models.StudentRecord {
	sorted := s.All()
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].TotalMark < sorted[j].TotalMark
		}
		return sorted[i].TotalMark > sorted[j].TotalMark
	})
	return sorted
}

func (s *RecordService) indexByCodeLocked(code int) int {
	for i, r := range s.records {
		if r.Code == code {
			return i
		}
	}
	return -1
}

func (s *RecordService) indexBySelectorLocked(sel models.Selector) int {
	if sel.ByCode {
		return s.indexByCodeLocked(sel.Code)
	}
	for i, r := range s.records {
		if strings.EqualFold(r.Name, sel.Name()) {
			return i
		}
	}
	return -1
}

// commitLocked persists after an in-memory mutation. On failure the mutation is
// kept in memory and the error is reported.
func (s *RecordService) commitLocked(ctx context.Context, op string) error {
	s.metrics.SetRecordCount(len(s.records))
	if err := s.persistLocked(ctx); err != nil {
		s.metrics.ObserveMutation(op, false)
		return err
	}
	s.metrics.ObserveMutation(op, true)
	return nil
}

func (s *RecordService) persistLocked(ctx context.Context) error {
	marks := make([]models.StudentMarks, len(s.records))
	for i, r := range s.records {
		marks[i] = r.StudentMarks
	}
	start := time.Now()
	err := s.backend.Save(ctx, marks)
	s.metrics.ObservePersist(time.Since(start), err)
	if err != nil {
		s.logger.Error("failed to persist student records", zap.String("source", s.backend.Location()), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistenceFailed.Code, appErrors.ErrPersistenceFailed.Status,
			fmt.Sprintf("could not write to %s; changes not saved", s.backend.Location()))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid student marks"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "min", "max":
			limit := models.MaxCourseworkMark
			if field == string(models.FieldExam) {
				limit = models.MaxExamMark
			}
			parts = append(parts, field+" must be between 0 and "+strconv.Itoa(limit))
		case "gt":
			parts = append(parts, "code must be a positive integer")
		case "required":
			parts = append(parts, "name is required")
		case "excludesall":
			parts = append(parts, "name must not contain a comma or line break")
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
