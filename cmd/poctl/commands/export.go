package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/purchase-orders/internal/export"
)

var (
	exportFilters filterFlags
	exportFormat  string
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored order lines to CSV or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		out := exportOut
		if out == "" {
			out = "orders." + string(format)
		}

		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		var n int
		err = writeFile(out, func(f *os.File) error {
			var werr error
			n, werr = a.export.ExportOrders(cmd.Context(), exportFilters.request(), format, f)
			return werr
		})
		if err != nil {
			return err
		}
		printSuccess("exported %s rows to %s", numbers.Sprintf("%d", n), out)
		return nil
	},
}

func init() {
	exportFilters.bind(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default orders.<format>)")
}
