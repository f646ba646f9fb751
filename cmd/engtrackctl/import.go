package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rpattn/engtrack/internal/domain"
	"github.com/rpattn/engtrack/internal/ingestion"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <ppm|ocm|training> <file>",
		Short: "Import a CSV or Excel sheet into the record store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}
			file, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[1], err)
			}
			defer file.Close()

			services, closeStore, err := openServices(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer closeStore()

			summary, err := services.Ingestion.Import(cmd.Context(), kind, ingestion.Upload{
				FileName: filepath.Base(args[1]),
				Data:     file,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d rows, %d created, %d updated, %d stored\n",
				summary.Kind.Label(), summary.TotalRows, summary.Created, summary.Updated, summary.CollectionSize)
			for _, w := range summary.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", w.Error())
			}
			return nil
		},
	}
	return cmd
}
