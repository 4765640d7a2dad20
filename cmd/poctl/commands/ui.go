package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joseph-ayodele/purchase-orders/internal/entity"
	"github.com/joseph-ayodele/purchase-orders/internal/repository"
)

var numbers = message.NewPrinter(language.English)

func initUI(disable bool) {
	if disable {
		color.NoColor = true
	}
}

func printSuccess(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(os.Stdout, "✓ %s\n", fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "⚠ %s\n", fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		printWarning("%s", w)
	}
}

func formatCount(d decimal.Decimal) string {
	if d.IsInteger() {
		return numbers.Sprintf("%d", d.IntPart())
	}
	return numbers.Sprintf("%.2f", d.InexactFloat64())
}

func formatMoney(d decimal.Decimal) string {
	return numbers.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func nullCount(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return formatCount(d.Decimal)
}

func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return formatMoney(d.Decimal)
}

func printSummary(w io.Writer, s entity.Summary) {
	numbers.Fprintf(w, "%d rows, %d styles, %d colors, quantity %s, total %s\n",
		s.Rows, s.Styles, s.Colors, formatCount(s.Quantity), formatMoney(s.Total))
}

func printUpsert(res *repository.UpsertResult) {
	printUpsertStats(res.Stats)
	for _, e := range res.Errors {
		printWarning("%v", e)
	}
}

func printUpsertStats(s entity.UpsertStats) {
	msg := numbers.Sprintf("saved: %d inserted, %d updated, %d failed of %d", s.Inserted, s.Updated, s.Failed, s.Attempted)
	if s.Failed > 0 {
		printWarning("%s", msg)
		return
	}
	printSuccess("%s", msg)
}

// renderOrders prints a compact view; exports carry every column.
func renderOrders(w io.Writer, list []*entity.Order, s entity.Summary) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Order", "Line", "Style", "Color", "Color name", "Qty", "Price", "Total", "Issued", "Season"})
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
	})
	for _, o := range list {
		t.Append([]string{
			o.OrderNumber, nullCount(o.Line), o.StyleCode, o.ColorCode, o.ColorName,
			nullCount(o.Quantity), nullMoney(o.Price), nullMoney(o.Total), o.IssueDate, o.Season,
		})
	}
	t.SetFooter([]string{
		numbers.Sprintf("%d rows", s.Rows), "", numbers.Sprintf("%d styles", s.Styles), "",
		numbers.Sprintf("%d colors", s.Colors), formatCount(s.Quantity), "", formatMoney(s.Total), "", "",
	})
	t.Render()
}
