package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
	"github.com/joseph-ayodele/purchase-orders/internal/orders"
	"github.com/joseph-ayodele/purchase-orders/internal/utils"
)

// Service is a tiny façade over the order service that streams search results as
// CSV or XLSX.
type Service struct {
	orders *orders.Service
	logger *slog.Logger
}

func NewService(svc *orders.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{orders: svc, logger: logger}
}

// ExportOrders writes the orders matching req to w and returns the row count.
func (s *Service) ExportOrders(ctx context.Context, req orders.SearchRequest, format Format, w io.Writer) (int, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, s.logger)

	res, err := s.orders.Search(ctx, req)
	if err != nil {
		return 0, err
	}
	if err := Write(w, utils.OrdersToTable(res.Orders), format); err != nil {
		logger.Error("export.write.failed", "format", format, "err", err)
		return 0, err
	}

	logger.Info("export.ok",
		"format", format,
		"rows", len(res.Orders),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return len(res.Orders), nil
}

// Write serializes t in the given format.
func Write(w io.Writer, t *dataset.Table, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	}
	return fmt.Errorf("export: unknown format %q", format)
}

// Read parses a CSV or XLSX export back into a table.
func Read(r io.Reader, format Format) (*dataset.Table, []error, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	}
	return nil, nil, fmt.Errorf("export: unknown format %q", format)
}
