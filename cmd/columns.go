package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tblx/pkg/loader"
	"github.com/oakwood-commons/tblx/pkg/logger"
)

func newColumnsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns [file]",
		Short: "Print the column definitions inferred from the rows as YAML",
		Long: `Print the column definitions tblx infers from the rows. The output is a
valid --columns file and a starting point for customizing titles, display
kinds and formats.`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			doc, err := loadDocument(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			columns := loader.InferColumns(doc)
			logger.FromContext(cmd.Context()).V(1).Info("inferred columns", "columns", len(columns), "declared", len(doc.Declared))

			out, err := yaml.Marshal(columns)
			if err != nil {
				return fmt.Errorf("encode columns: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
