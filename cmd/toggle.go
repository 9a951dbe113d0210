package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tblx/pkg/core"
)

func newToggleCmd() *cobra.Command {
	var (
		order  orderFlag
		column string
		multi  bool
	)
	cmd := &cobra.Command{
		Use:     "toggle",
		Short:   "Print the ordering that results from activating a column header",
		Example: "\n  tblx toggle --column age                       # age:asc\n  tblx toggle --order age:asc --column age       # age:desc\n  tblx toggle --order age --column name --multi  # age:asc,name:asc",
		Args:    maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if column == "" {
				return newUsageError(errors.New("--column is required"))
			}
			engine, err := core.New()
			if err != nil {
				return err
			}
			next := engine.Toggle(cmd.Context(), column, order.Spec(), multi)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), next.String())
			return err
		},
	}
	cmd.Flags().Var(&order, "order", "current ordering")
	cmd.Flags().StringVar(&column, "column", "", "column whose header is activated")
	cmd.Flags().BoolVar(&multi, "multi", false, "extend the ordering instead of replacing it")
	return cmd
}
