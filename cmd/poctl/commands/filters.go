package commands

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/purchase-orders/internal/orders"
)

// filterFlags binds the search criteria shared by search and export.
type filterFlags struct {
	req  orders.SearchRequest
	desc bool
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.req.Query, "query", "q", "", "substring of order number, style code or color name")
	fl.StringVar(&f.req.OrderNumber, "order-number", "", "order number contains")
	fl.StringVar(&f.req.StyleCode, "style", "", "style code contains")
	fl.StringVar(&f.req.ColorName, "color", "", "color name contains")
	fl.StringVar(&f.req.MinQuantity, "min-qty", "", "minimum quantity")
	fl.StringVar(&f.req.From, "from", "", "issue date from, YYYY-MM-DD")
	fl.StringVar(&f.req.To, "to", "", "issue date to, YYYY-MM-DD")
	fl.StringVar(&f.req.Sort, "sort", "", "sort column (default IssueDate)")
	fl.BoolVar(&f.desc, "desc", false, "sort descending")
	fl.IntVar(&f.req.Limit, "limit", 0, "maximum rows, 0 for all")
}

func (f *filterFlags) request() orders.SearchRequest {
	r := f.req
	if f.desc {
		r.Order = "desc"
	}
	return r
}
