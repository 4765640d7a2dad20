// Package extract turns raw page fragments into rows. A fragment is either a
// vertical-bar table or a wrapped JSON array of records; numeric columns are
// coerced to exact decimals.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
)

var errEmptyPage = errors.New("page is empty")

// DefaultStrategies returns the strategies in the order they are tried.
func DefaultStrategies() []Strategy {
	return []Strategy{TabularStrategy{}, StructuredStrategy{}}
}

// Extractor runs the strategies over one page at a time. It is safe for concurrent use.
type Extractor struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewExtractor builds an extractor. With no strategies it uses DefaultStrategies.
func NewExtractor(logger *slog.Logger, strategies ...Strategy) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Extractor{strategies: strategies, logger: logger}
}

// ExtractPage never fails the caller for a bad page: the page's failure is reported in
// PageResult.Err and it contributes no rows. The error return is only for ctx.
func (e *Extractor) ExtractPage(ctx context.Context, p Page) (res PageResult, err error) {
	if err := ctx.Err(); err != nil {
		return PageResult{}, err
	}
	logger := common.LoggerFromContext(ctx, e.logger).With("page", p.Index, "source", p.Source)

	res = PageResult{Page: p.Index, Source: p.Source}
	defer func() {
		if r := recover(); r != nil {
			res = PageResult{Page: p.Index, Source: p.Source,
				Err: &common.PageFormatError{Page: p.Index, Source: p.Source, Cause: fmt.Errorf("panic: %v", r)}}
			logger.Error("extract.page.panic", "panic", r)
		}
	}()

	if strings.TrimSpace(p.Text) == "" {
		res.Err = &common.PageFormatError{Page: p.Index, Source: p.Source, Cause: errEmptyPage}
		logger.Warn("extract.page.failed", "err", res.Err)
		return res, nil
	}

	var causes []error
	for _, s := range e.strategies {
		t, perr := s.Parse(p.Text)
		if perr != nil {
			logger.Debug("extract.strategy.failed", "strategy", s.Name(), "err", perr)
			causes = append(causes, fmt.Errorf("%s: %w", s.Name(), perr))
			continue
		}
		res.Strategy = s.Name()
		res.Table = t
		break
	}
	if res.Table == nil {
		res.Err = &common.PageFormatError{Page: p.Index, Source: p.Source, Cause: errors.Join(causes...)}
		logger.Warn("extract.page.failed", "err", res.Err)
		return res, nil
	}

	res.Warnings = coerceNumeric(res.Table, p.Index)
	for _, w := range res.Warnings {
		logger.Warn("extract.field.coerced", "err", w)
	}
	logger.Debug("extract.page.ok", "strategy", res.Strategy, "rows", res.Table.Len(), "columns", len(res.Table.Columns))
	return res, nil
}

// coerceNumeric converts the numeric columns of t in place. Cells that do not parse
// become null and are reported.
func coerceNumeric(t *dataset.Table, page int) []error {
	var warnings []error
	for _, col := range constants.NumericColumns {
		if !t.HasColumn(col) {
			continue
		}
		for i, row := range t.Rows {
			orig := row.Get(col)
			v, ok := orig.ToNumber()
			row[col] = v
			if !ok {
				warnings = append(warnings, &common.FieldCoercionError{Page: page, Row: i, Column: col, Value: orig.String()})
			}
		}
	}
	return warnings
}
