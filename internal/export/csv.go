package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
)

// WriteCSV writes t with a header row in column order.
func WriteCSV(w io.Writer, t *dataset.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records(cellText)); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	return nil
}

// ReadCSV reads a CSV export back into a table. Numeric cells that do not parse are
// nulled and reported as warnings.
func ReadCSV(r io.Reader) (*dataset.Table, []error, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("csv read: empty file")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("csv read header: %w", err)
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("csv read: %w", err)
	}
	t, warnings := fromRecords(header, records)
	return t, warnings, nil
}
