package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpattn/engtrack/internal/domain"
	"github.com/rpattn/engtrack/internal/export"
)

type templateOptions struct {
	outputDir string
	sample    bool
	style     string
}

func newTemplateCmd(root *rootOptions) *cobra.Command {
	var opts templateOptions

	cmd := &cobra.Command{
		Use:   "template <ppm|ocm|training>",
		Short: "Write a blank or sample import template",
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

			var wb export.Workbook
			if opts.sample {
				var style export.SampleStyle
				if opts.style != "" {
					if style, err = export.ParseSampleStyle(opts.style); err != nil {
						return err
					}
				}
				wb, err = services.Export.SampleTemplate(kind, style)
				if err != nil {
					return err
				}
			} else {
				wb, err = services.Export.BlankTemplate(kind)
				if err != nil {
					return err
				}
			}

			path, err := export.Save(opts.outputDir, wb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.outputDir, "output", ".", "Directory to write the workbook into")
	cmd.Flags().BoolVar(&opts.sample, "sample", false, "Include sample rows")
	cmd.Flags().StringVar(&opts.style, "style", "", "Sample file naming: template or sample_data (default from config)")
	return cmd
}
