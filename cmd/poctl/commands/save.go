package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/purchase-orders/internal/export"
)

var saveFile string

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Upsert an edited CSV or XLSX export back into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(saveFile)
		if err != nil {
			return err
		}
		f, err := os.Open(saveFile)
		if err != nil {
			return err
		}
		defer f.Close()

		t, warnings, err := export.Read(f, format)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			printWarning("%v", w)
		}

		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.orders.SaveTable(cmd.Context(), t)
		if err != nil {
			return err
		}
		printUpsert(res)
		return nil
	},
}

func init() {
	saveCmd.Flags().StringVarP(&saveFile, "file", "f", "", "CSV or XLSX file to save (required)")
	_ = saveCmd.MarkFlagRequired("file")
}
