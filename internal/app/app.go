package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-marks/internal/models"
	"github.com/noah-isme/sma-marks/internal/repository"
	"github.com/noah-isme/sma-marks/internal/service"
	"github.com/noah-isme/sma-marks/pkg/cache"
	"github.com/noah-isme/sma-marks/pkg/config"
	"github.com/noah-isme/sma-marks/pkg/database"
	"github.com/noah-isme/sma-marks/pkg/jobs"
	"github.com/noah-isme/sma-marks/pkg/storage"
)

// Options tunes which optional pieces New wires up.
type Options struct {
	// Metrics registers Prometheus collectors; the HTTP server wants them, the CLI does not.
	Metrics bool
	// Cache connects the Redis view cache when REDIS_ENABLED is set.
	Cache bool
	// ExportStorage prepares EXPORTS_DIR so exports can be written to disk.
	ExportStorage bool
	// ExportJobs adds the background export queue; it implies ExportStorage.
	ExportJobs bool
}

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// App holds the wired services shared by the HTTP server and the CLI.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService
	Records *service.RecordService
	Views   *service.ViewService
	Exports *service.ExportService
	Jokes   *service.JokeService
	Quiz    *service.QuizService
	Tokens  *service.TokenService
	Checks  map[string]Check
	// ExportJobs is nil unless Options.ExportJobs was set.
	ExportJobs *service.ExportJobService

	queue   *jobs.Queue
	closers []func() error
}

// New builds the service graph for cfg. Records are not loaded; call Records.Load.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger, Checks: map[string]Check{}}

	if opts.Metrics {
		a.Metrics = service.NewMetricsService()
	}

	backend, err := a.recordBackend(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Records = service.NewRecordService(backend, validator.New(), logger.Named("records"), a.Metrics)
	a.Checks["records"] = func(context.Context) error {
		if a.Records.Revision() == 0 {
			return errors.New("records not loaded")
		}
		return nil
	}

	var cacheSvc *service.CacheService
	if opts.Cache && cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, view cache disabled", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, logger.Named("cache"))
			a.closers = append(a.closers, repo.Close)
			a.Checks["redis"] = repo.Ping
			cacheSvc = service.NewCacheService(repo, a.Metrics, cfg.Cache.TTL, logger.Named("cache"))
		}
	}
	a.Views = service.NewViewService(a.Records, cacheSvc, cfg.Cache.TTL, logger.Named("views"))

	if opts.ExportStorage || opts.ExportJobs {
		files, err := storage.NewLocalStorage(cfg.Exports.Dir)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Exports = service.NewExportService(a.Views, files, logger.Named("exports"), nil, nil)
		if opts.ExportJobs {
			a.ExportJobs = service.NewExportJobService(a.Exports, files, nil, logger.Named("export-jobs"))
			a.queue = jobs.NewQueue("exports", a.ExportJobs.Process, jobs.QueueConfig{
				Workers:    cfg.Exports.Workers,
				MaxRetries: cfg.Exports.MaxRetries,
				Logger:     logger.Named("queue"),
				OnGiveUp:   a.ExportJobs.Fail,
			})
			a.ExportJobs.Attach(a.queue)
		}
	} else {
		a.Exports = service.NewExportService(a.Views, nil, logger.Named("exports"), nil, nil)
	}

	a.Jokes = service.NewJokeService(repository.NewJokeFileRepository(cfg.Jokes.File, logger.Named("jokes")), nil, logger.Named("jokes"))
	a.Quiz = service.NewQuizService(cfg.Quiz.Questions, nil)
	a.Tokens = service.NewTokenService(service.TokenConfig{
		Secret:       cfg.Auth.Secret,
		Expiry:       cfg.Auth.Expiration,
		Issuer:       cfg.Auth.Issuer,
		PasswordHash: cfg.Auth.PasswordHash,
	})

	return a, nil
}

type recordBackend interface {
	Load(ctx context.Context) ([]models.StudentMarks, error)
	Save(ctx context.Context, marks []models.StudentMarks) error
	Location() string
}

func (a *App) recordBackend(ctx context.Context) (recordBackend, error) {
	switch a.Config.Records.Backend {
	case config.BackendFile, "":
		return repository.NewRecordFileRepository(a.Config.Records.File, a.Logger.Named("records")), nil
	case config.BackendPostgres:
		db, err := database.NewPostgres(ctx, a.Config.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.Checks["postgres"] = db.PingContext
		repo := repository.NewRecordPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown RECORDS_BACKEND %q; expected %s or %s", a.Config.Records.Backend, config.BackendFile, config.BackendPostgres)
	}
}

// Start launches background workers. They stop when ctx ends or on Close.
func (a *App) Start(ctx context.Context) {
	if a.queue != nil {
		a.queue.Start(ctx)
	}
}

// Close stops background workers and releases connections opened by New.
func (a *App) Close() error {
	if a.queue != nil {
		a.queue.Stop()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
