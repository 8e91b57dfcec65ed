package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-marks/internal/server"
	"github.com/noah-isme/sma-marks/pkg/logger"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				_ = out.Error("CONFIG_ERROR", err.Error(), nil)
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if port > 0 {
				cfg.Port = port
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "init logger", err)
			}
			defer logr.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := server.Run(ctx, cfg, logr); err != nil {
				return out.Fail(err)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from PORT)")
	return cmd
}
