package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-marks/internal/app"
	"github.com/noah-isme/sma-marks/pkg/config"
	"github.com/noah-isme/sma-marks/pkg/logger"
)

// session is the per-invocation state shared by the record commands.
type session struct {
	app *app.App
	out *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.File != "" {
		cfg.Records.Backend = config.BackendFile
		cfg.Records.File = opts.File
	}
	return cfg, nil
}

// openSession wires the services and, when loadRecords is set, reads the store.
// The caller must close the returned session.
func openSession(cmd *cobra.Command, opts *RootOptions, appOpts app.Options, loadRecords bool) (*session, error) {
	out := newFormatter(opts, cmd)
	ctx := commandContext(cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		_ = out.Error("CONFIG_ERROR", err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	logr, err := logger.NewCLI(cfg, opts.Verbose)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "init logger", err)
	}

	a, err := app.New(ctx, cfg, logr, appOpts)
	if err != nil {
		_ = out.Error("STARTUP_FAILED", err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "start", err)
	}
	s := &session{app: a, out: out}

	if loadRecords {
		report, err := a.Records.Load(ctx)
		if err != nil {
			s.Close()
			return nil, out.Fail(err)
		}
		out.VerboseLog("Loaded %d record(s) from %s, skipped %d", report.Loaded, report.Source, report.Skipped)
	}
	return s, nil
}

func (s *session) Close() {
	if err := s.app.Close(); err != nil {
		s.app.Logger.Warn("close failed", zap.Error(err))
	}
	_ = s.app.Logger.Sync()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
