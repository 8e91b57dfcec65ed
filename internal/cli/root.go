package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	File    string // overrides RECORDS_FILE and forces the file backend
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the marks CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "marks",
		Short: "Student marks manager",
		Long: `Manage student coursework and exam marks.

Records are read from the configured store on every run; changes are written
back immediately. Grades follow A >= 70%, B >= 60%, C >= 50%, D >= 40%, else F.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.File, "file", "f", "", "student marks file (default from RECORDS_FILE)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewExtremeCommand(opts, true))
	cmd.AddCommand(NewExtremeCommand(opts, false))
	cmd.AddCommand(NewSortCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewJokeCommand(opts))
	cmd.AddCommand(NewQuizCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return GetExitCode(err)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
