package extract

import (
	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
)

// Page is one raw fragment as produced by the upstream document-to-text service.
type Page struct {
	Index  int
	Source string
	Text   string
}

// Strategy turns the text of one page into a table, or reports why it cannot.
type Strategy interface {
	Name() string
	Parse(text string) (*dataset.Table, error)
}

// PageResult is the outcome of extracting one page. Err is a *common.PageFormatError
// when the page contributed no rows; Warnings carries *common.FieldCoercionError values.
type PageResult struct {
	Page     int
	Source   string
	Strategy string
	Table    *dataset.Table
	Warnings []error
	Err      error
}

// Rows returns the extracted rows, nil when the page failed.
func (r PageResult) Rows() []dataset.Row {
	if r.Table == nil {
		return nil
	}
	return r.Table.Rows
}
