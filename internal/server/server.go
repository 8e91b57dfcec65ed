package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-marks/internal/app"
	"github.com/noah-isme/sma-marks/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// Run loads the record store, serves HTTP on cfg.Port and shuts down gracefully
// once ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	a, err := app.New(ctx, cfg, logr, app.Options{Metrics: true, Cache: true, ExportJobs: true})
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	report, err := a.Records.Load(ctx)
	if err != nil {
		return err
	}
	logr.Info("student records loaded",
		zap.String("source", report.Source),
		zap.Int("loaded", report.Loaded),
		zap.Int("skipped", report.Skipped),
	)

	a.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           NewRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Records.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
