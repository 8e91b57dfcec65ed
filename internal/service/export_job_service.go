package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
	"github.com/noah-isme/sma-marks/pkg/jobs"
)

const (
	exportJobKind  = "export"
	maxTrackedJobs = 100
)

type exportSaver interface {
	SaveTagged(ctx context.Context, format models.ExportFormat, order models.SortOrder, tag string) (*models.ExportFile, string, error)
}

type storedFiles interface {
	Open(filename string) (*os.File, error)
	List(ext string) ([]string, error)
	Delete(filename string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ExportJobService renders exports on the worker queue and keeps their status
// in memory until they age out.
type ExportJobService struct {
	exports exportSaver
	files   storedFiles
	queue   jobDispatcher
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.RWMutex
	jobs  map[string]*models.ExportJob
	order []string
}

// NewExportJobService constructs the service. queue may be attached later with
// Attach when the queue handler itself needs the service.
func NewExportJobService(exports exportSaver, files storedFiles, queue jobDispatcher, logger *zap.Logger) *ExportJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportJobService{
		exports: exports,
		files:   files,
		queue:   queue,
		logger:  logger,
		now:     time.Now,
		jobs:    make(map[string]*models.ExportJob),
	}
}

// Attach sets the dispatcher used by Submit.
func (s *ExportJobService) Attach(queue jobDispatcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = queue
}

// Submit records a queued export and hands it to the worker pool.
func (s *ExportJobService) Submit(format models.ExportFormat, order models.SortOrder) (*models.ExportJob, error) {
	job := &models.ExportJob{
		ID:        uuid.NewString(),
		Format:    format,
		Order:     order,
		Status:    models.ExportJobQueued,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.pruneLocked()
	queue := s.queue
	s.mu.Unlock()

	if queue == nil {
		s.markFailed(job.ID, "export queue is not running")
		return nil, appErrors.Clone(appErrors.ErrInternal, "export queue is not running")
	}
	if err := queue.Enqueue(jobs.Job{ID: job.ID, Kind: exportJobKind}); err != nil {
		s.markFailed(job.ID, "failed to enqueue export")
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "too many exports in progress, try again later")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	s.logger.Info("export job queued", zap.String("job_id", job.ID), zap.String("format", string(format)))
	return s.snapshot(job.ID)
}

// Get returns a copy of the job's current state.
func (s *ExportJobService) Get(id string) (*models.ExportJob, error) {
	return s.snapshot(id)
}

// Process is the queue handler: it renders and stores the export for job.
func (s *ExportJobService) Process(ctx context.Context, job jobs.Job) error {
	s.mu.Lock()
	tracked, ok := s.jobs[job.ID]
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("export job vanished before processing", zap.String("job_id", job.ID))
		return nil
	}
	tracked.Status = models.ExportJobProcessing
	format, order := tracked.Format, tracked.Order
	s.mu.Unlock()

	file, _, err := s.exports.SaveTagged(ctx, format, order, job.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tracked, ok = s.jobs[job.ID]; ok {
		finished := s.now().UTC()
		tracked.Status = models.ExportJobFinished
		tracked.Filename = file.Filename
		tracked.Records = file.Records
		tracked.Error = ""
		tracked.FinishedAt = &finished
	}
	s.logger.Info("export job finished", zap.String("job_id", job.ID), zap.String("file", file.Filename))
	return nil
}

// Fail marks job as failed once the queue stops retrying it.
func (s *ExportJobService) Fail(job jobs.Job, err error) {
	msg := "export failed"
	if err != nil {
		msg = appErrors.FromError(err).Message
	}
	s.markFailed(job.ID, msg)
}

// Open returns the stored file of a finished job. The caller closes it.
func (s *ExportJobService) Open(id string) (*os.File, *models.ExportJob, error) {
	job, err := s.snapshot(id)
	if err != nil {
		return nil, nil, err
	}
	if job.Status != models.ExportJobFinished || job.Filename == "" {
		return nil, job, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("export job is %s, no file to download", job.Status))
	}
	file, err := s.files.Open(job.Filename)
	if err != nil {
		return nil, job, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file is no longer available")
	}
	return file, job, nil
}

// Files lists every stored export, CSV first then PDF.
func (s *ExportJobService) Files() ([]string, error) {
	var all []string
	for _, ext := range []string{".csv", ".pdf"} {
		names, err := s.files.List(ext)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exports")
		}
		all = append(all, names...)
	}
	if all == nil {
		all = []string{}
	}
	return all, nil
}

func (s *ExportJobService) snapshot(id string) (*models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("export job %q not found", id))
	}
	clone := *job
	return &clone, nil
}

func (s *ExportJobService) markFailed(id, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	finished := s.now().UTC()
	job.Status = models.ExportJobFailed
	job.Error = msg
	job.FinishedAt = &finished
	s.logger.Warn("export job failed", zap.String("job_id", id), zap.String("error", msg))
}

// pruneLocked forgets the oldest finished jobs beyond maxTrackedJobs and removes their files.
func (s *ExportJobService) pruneLocked() {
	for len(s.order) > maxTrackedJobs {
		idx := -1
		for i, id := range s.order {
			if s.jobs[id].Done() {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		id := s.order[idx]
		if name := s.jobs[id].Filename; name != "" {
			if err := s.files.Delete(name); err != nil {
				s.logger.Warn("failed to remove aged export", zap.String("file", name), zap.Error(err))
			}
		}
		delete(s.jobs, id)
		s.order = append(s.order[:idx], s.order[idx+1:]...)
	}
}
