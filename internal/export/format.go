package export

import (
	"strings"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
)

// cellText renders one cell for text formats. Currency shows at least two decimals
// and never fewer than the value carries.
func cellText(col string, v dataset.Value) string {
	if d, ok := v.Decimal(); ok && constants.IsCurrencyColumn(col) {
		return d.StringFixed(max(2, -d.Exponent()))
	}
	return v.String()
}

// fromRecords builds a table from a header and string records, coercing numeric
// columns. Cells that do not parse become null and are returned as warnings.
func fromRecords(header []string, records [][]string) (*dataset.Table, []error) {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	t := dataset.NewTable(cols...)
	var warnings []error
	for n, rec := range records {
		row := make(dataset.Row, len(cols))
		for i, c := range cols {
			var s string
			if i < len(rec) {
				s = strings.TrimSpace(rec[i])
			}
			v := dataset.Null()
			if s != "" {
				v = dataset.Text(s)
			}
			if constants.IsNumericColumn(c) {
				num, ok := v.ToNumber()
				if !ok {
					warnings = append(warnings, &common.FieldCoercionError{Row: n, Column: c, Value: s})
				}
				v = num
			}
			row[c] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, warnings
}

// Format is an export serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx", case-insensitively, and file names ending in them.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	for _, f := range constants.ExportFormats {
		if s == f {
			return Format(s), nil
		}
	}
	return "", common.NewAppError("INVALID_ARGUMENT", "format must be csv or xlsx", common.ErrInvalidInput)
}

// ContentType returns the MIME type for downloads.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}
