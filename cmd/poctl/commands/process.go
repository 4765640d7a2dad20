package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/purchase-orders/internal/export"
)

var processOpts struct {
	dir  string
	out  string
	xlsx bool
	save bool
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Merge the page fragments in a directory into one order dataset",
	Example: `  poctl process --dir ./inbox/PO-1042
  poctl process --dir ./inbox/PO-1042 --xlsx --save`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, processOpts.save)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.processor.ProcessDirectory(ctx, processOpts.dir, processOpts.save)
		if err != nil {
			return err
		}
		printWarnings(res.Warnings)

		format := export.FormatCSV
		if processOpts.xlsx {
			format = export.FormatXLSX
		}
		out := processOpts.out
		if out == "" {
			dir := filepath.Clean(processOpts.dir)
			out = filepath.Join(filepath.Dir(dir), filepath.Base(dir)+"."+string(format))
		} else if f, err := export.ParseFormat(out); err == nil {
			format = f
		}
		if err := writeFile(out, func(f *os.File) error { return export.Write(f, res.Dataset, format) }); err != nil {
			return err
		}

		printSummary(cmd.OutOrStdout(), res.Summary)
		if res.Upsert != nil {
			printUpsertStats(*res.Upsert)
		}
		printSuccess("wrote %s", out)
		return nil
	},
}

func init() {
	processCmd.Flags().StringVarP(&processOpts.dir, "dir", "d", "", "directory holding one document's page files (required)")
	processCmd.Flags().StringVarP(&processOpts.out, "out", "o", "", "output file (default <dir>.csv next to the directory)")
	processCmd.Flags().BoolVar(&processOpts.xlsx, "xlsx", false, "write XLSX instead of CSV")
	processCmd.Flags().BoolVar(&processOpts.save, "save", false, "upsert the merged orders into the store")
	_ = processCmd.MarkFlagRequired("dir")
}

// writeFile creates path and removes it again when fn fails.
func writeFile(path string, fn func(*os.File) error) error {
	if strings.TrimSpace(path) == "" {
		return os.ErrInvalid
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
