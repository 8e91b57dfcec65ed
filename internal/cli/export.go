package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-marks/internal/app"
	"github.com/noah-isme/sma-marks/internal/models"
	"github.com/noah-isme/sma-marks/internal/service"
)

// ExportResult describes a stored export.
type ExportResult struct {
	File    string `json:"file"`
	Path    string `json:"path"`
	Format  string `json:"format"`
	Records int    `json:"records"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		kind string
		desc bool
		asc  bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the record table to EXPORTS_DIR as CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts, app.Options{ExportStorage: true}, true)
			if err != nil {
				return err
			}
			defer s.Close()

			format, err := service.ParseFormat(kind)
			if err != nil {
				return s.out.Fail(err)
			}
			order := models.OrderNone
			switch {
			case desc:
				order = models.OrderDescending
			case asc:
				order = models.OrderAscending
			}

			file, path, err := s.app.Exports.Save(commandContext(cmd), format, order)
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Result(
				fmt.Sprintf("Exported %d record(s) to %s", file.Records, path),
				ExportResult{File: file.Filename, Path: path, Format: string(file.Format), Records: file.Records},
			)
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", "csv", "export type (csv|pdf)")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort by total mark, highest first")
	cmd.Flags().BoolVar(&asc, "asc", false, "sort by total mark, lowest first")
	cmd.MarkFlagsMutuallyExclusive("desc", "asc")
	return cmd
}
