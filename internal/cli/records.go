package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-marks/internal/app"
	"github.com/noah-isme/sma-marks/internal/dto"
	"github.com/noah-isme/sma-marks/internal/models"
	"github.com/noah-isme/sma-marks/internal/service"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every student record with the class summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecords(cmd, rootOpts, func(s *session) error {
				table, err := s.app.Views.Overview(commandContext(cmd))
				if err != nil {
					return s.out.Fail(err)
				}
				return s.out.Table(table)
			})
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <code|name>",
		Short: "Show one student by code or by part of the name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecords(cmd, rootOpts, func(s *session) error {
				table, err := s.app.Views.Lookup(commandContext(cmd), args[0])
				if err != nil {
					return s.out.Fail(err)
				}
				return s.out.Table(table)
			})
		},
	}
}

// NewExtremeCommand creates the top (highest) or bottom (lowest) command.
func NewExtremeCommand(rootOpts *RootOptions, highest bool) *cobra.Command {
	use, short := "bottom", "Show the student with the lowest total mark"
	if highest {
		use, short = "top", "Show the student with the highest total mark"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecords(cmd, rootOpts, func(s *session) error {
				table, err := s.app.Views.Extreme(commandContext(cmd), highest)
				if err != nil {
					return s.out.Fail(err)
				}
				return s.out.Table(table)
			})
		},
	}
}

// NewSortCommand creates the sort command.
func NewSortCommand(rootOpts *RootOptions) *cobra.Command {
	var desc bool
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "List students ordered by total mark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecords(cmd, rootOpts, func(s *session) error {
				table, err := s.app.Views.Sorted(commandContext(cmd), !desc)
				if err != nil {
					return s.out.Fail(err)
				}
				return s.out.Table(table)
			})
		},
	}
	cmd.Flags().BoolVar(&desc, "desc", false, "sort from highest to lowest")
	return cmd
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var marks models.StudentMarks
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecords(cmd, rootOpts, func(s *session) error {
				rec, err := s.app.Records.Add(commandContext(cmd), marks)
				if err != nil {
					return s.out.Fail(err)
				}
				return s.out.Table(s.app.Views.Single("Added Record for "+rec.Name, rec))
			})
		},
	}
	cmd.Flags().IntVar(&marks.Code, "code", 0, "unique student code")
	cmd.Flags().StringVar(&marks.Name, "name", "", "student name")
	cmd.Flags().IntVar(&marks.CW1, "cw1", 0, "coursework 1 mark (0-20)")
	cmd.Flags().IntVar(&marks.CW2, "cw2", 0, "coursework 2 mark (0-20)")
	cmd.Flags().IntVar(&marks.CW3, "cw3", 0, "coursework 3 mark (0-20)")
	cmd.Flags().IntVar(&marks.Exam, "exam", 0, "exam mark (0-100)")
	for _, name := range []string{"code", "name", "cw1", "cw2", "cw3", "exam"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <code|name>",
		Short: "Delete every student with the given code or exact name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecords(cmd, rootOpts, func(s *session) error {
				sel := models.ParseSelector(args[0])
				removed, err := s.app.Records.Delete(commandContext(cmd), sel)
				if err != nil {
					return s.out.Fail(err)
				}
				return s.out.Result(
					fmt.Sprintf("Deleted %d record(s) matching %q.", removed, sel.Raw),
					dto.DeleteRecordResponse{Selector: sel.Raw, Removed: removed},
				)
			})
		},
	}
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <code|name> <field> <value>",
		Short: "Change one field (name, cw1, cw2, cw3, exam) of a student",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecords(cmd, rootOpts, func(s *session) error {
				field, err := service.ParseField(args[1])
				if err != nil {
					return s.out.Fail(err)
				}
				rec, err := s.app.Records.Update(commandContext(cmd), models.ParseSelector(args[0]), field, args[2])
				if err != nil {
					return s.out.Fail(err)
				}
				return s.out.Table(s.app.Views.Single("Updated Record for "+rec.Name, rec))
			})
		},
	}
}

func withRecords(cmd *cobra.Command, rootOpts *RootOptions, run func(s *session) error) error {
	s, err := openSession(cmd, rootOpts, app.Options{}, true)
	if err != nil {
		return err
	}
	defer s.Close()
	return run(s)
}
