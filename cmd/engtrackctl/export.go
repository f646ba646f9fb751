package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpattn/engtrack/internal/domain"
	"github.com/rpattn/engtrack/internal/export"
)

type exportOptions struct {
	outputDir string
	baseName  string
}

func newExportCmd(root *rootOptions) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export <ppm|ocm|training>",
		Short: "Export the stored collection to a dated workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}
			services, closeStore, err := openServices(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer closeStore()

			wb, err := services.Export.ExportRecords(cmd.Context(), kind, opts.baseName)
			if err != nil {
				return err
			}
			path, err := export.Save(opts.outputDir, wb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows)\n", path, wb.Rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.outputDir, "output", ".", "Directory to write the workbook into")
	cmd.Flags().StringVar(&opts.baseName, "base", "", "File name base (default {Label}_Records)")
	return cmd
}
