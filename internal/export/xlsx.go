package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
)

const (
	sheetName      = "Orders"
	countNumFmt    = 3 // #,##0
	currencyFormat = "$#,##0.00"
)

// WriteXLSX writes t as a single-sheet workbook. Numbers are stored as numeric cells;
// counts use #,##0 and currency columns $#,##0.00.
func WriteXLSX(w io.Writer, t *dataset.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	countStyle, err := f.NewStyle(&excelize.Style{NumFmt: countNumFmt})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}
	currFmt := currencyFormat
	currencyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &currFmt})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	for i, h := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(sheetName, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}

	for r, row := range t.Rows {
		for i, col := range t.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			v := row.Get(col)
			switch v.Kind() {
			case dataset.KindNull:
				continue
			case dataset.KindNumber:
				d, _ := v.Decimal()
				fv, _ := d.Float64()
				err = f.SetCellFloat(sheetName, cell, fv, -1, 64)
			default:
				err = f.SetCellStr(sheetName, cell, v.String())
			}
			if err != nil {
				return fmt.Errorf("xlsx cell %s: %w", cell, err)
			}
		}
	}

	if last := len(t.Rows) + 1; last > 1 {
		for i, col := range t.Columns {
			style := -1
			switch {
			case constants.IsCurrencyColumn(col):
				style = currencyStyle
			case constants.IsNumericColumn(col):
				style = countStyle
			}
			if style < 0 {
				continue
			}
			top, _ := excelize.CoordinatesToCellName(i+1, 2)
			bottom, _ := excelize.CoordinatesToCellName(i+1, last)
			if err := f.SetCellStyle(sheetName, top, bottom, style); err != nil {
				return fmt.Errorf("xlsx style: %w", err)
			}
		}
	}

	// Widen a few columns
	if n := len(t.Columns); n > 0 {
		lastCol, _ := excelize.ColumnNumberToName(n)
		_ = f.SetColWidth(sheetName, "A", lastCol, 14)
	}
	if i := indexOf(t.Columns, constants.ColDescription); i >= 0 {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, col, col, 36)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// ReadXLSX reads the first sheet of a workbook back into a table using raw cell values.
func ReadXLSX(r io.Reader) (*dataset.Table, []error, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx open: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("xlsx read: no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx read: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("xlsx read: empty sheet")
	}
	t, warnings := fromRecords(rows[0], rows[1:])
	return t, warnings, nil
}

func indexOf(cols []string, want string) int {
	for i, c := range cols {
		if c == want {
			return i
		}
	}
	return -1
}
