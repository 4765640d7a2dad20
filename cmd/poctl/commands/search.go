package commands

import (
	"github.com/spf13/cobra"
)

var searchFilters filterFlags

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search stored order lines",
	Example: `  poctl search -q navy
  poctl search --style A1 --min-qty 500 --from 2024-01-01 --sort Quantity --desc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.orders.Search(cmd.Context(), searchFilters.request())
		if err != nil {
			return err
		}
		if len(res.Orders) == 0 {
			printWarning("no matching orders")
			return nil
		}
		renderOrders(cmd.OutOrStdout(), res.Orders, res.Summary)
		return nil
	},
}

func init() {
	searchFilters.bind(searchCmd)
}
