package orders

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
	"github.com/joseph-ayodele/purchase-orders/internal/entity"
	"github.com/joseph-ayodele/purchase-orders/internal/repository"
	"github.com/joseph-ayodele/purchase-orders/internal/utils"
)

// Service handles order search and saving of edited datasets.
type Service struct {
	orderRepo repository.OrderRepository
	logger    *slog.Logger
}

// NewService creates a new order service.
func NewService(orderRepo repository.OrderRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// SearchRequest represents order search parameters as received from a user.
// Empty fields are not applied.
type SearchRequest struct {
	Query       string
	OrderNumber string
	StyleCode   string
	ColorName   string
	MinQuantity string
	From        string
	To          string
	Sort        string
	Order       string // asc | desc
	Limit       int
}

// SearchResult holds matching orders and their summary.
type SearchResult struct {
	Orders  []*entity.Order `json:"orders"`
	Summary entity.Summary  `json:"summary"`
}

func (r SearchRequest) validate() error {
	v := common.NewValidator()
	v.Field("from", r.From, common.YMD).
		Field("to", r.To, common.YMD).
		Field("min_quantity", r.MinQuantity, common.NonNegativeNumber).
		Field("sort", r.Sort, common.OneOf(constants.CanonicalColumns...)).
		Field("order", strings.ToLower(r.Order), common.OneOf("asc", "desc"))
	if v.HasErrors() || strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
		return v.Error()
	}
	from, _ := utils.ParseYMD(strings.TrimSpace(r.From))
	to, _ := utils.ParseYMD(strings.TrimSpace(r.To))
	if from.After(to) {
		v.Field("from", r.From, func(field string, value interface{}) *common.ValidationError {
			return &common.ValidationError{Field: field, Value: value, Message: "must not be after to"}
		})
	}
	return v.Error()
}

func (r SearchRequest) filter() repository.Filter {
	f := repository.Filter{
		Query:       strings.TrimSpace(r.Query),
		OrderNumber: strings.TrimSpace(r.OrderNumber),
		StyleCode:   strings.TrimSpace(r.StyleCode),
		ColorName:   strings.TrimSpace(r.ColorName),
		IssueFrom:   strings.TrimSpace(r.From),
		IssueTo:     strings.TrimSpace(r.To),
		SortBy:      r.Sort,
		Desc:        strings.EqualFold(r.Order, "desc"),
		Limit:       r.Limit,
	}
	// zero applies no bound, as in the search form
	if q, err := decimal.NewFromString(strings.TrimSpace(r.MinQuantity)); err == nil && q.IsPositive() {
		f.MinQuantity = decimal.NewNullDecimal(q)
	}
	return f
}

// Search validates req and returns matching orders with summary statistics.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	logger := common.LoggerFromContext(ctx, s.logger)
	if err := req.validate(); err != nil {
		logger.Warn("orders.search.invalid", "error", err)
		return nil, err
	}

	f := req.filter()
	recs, err := s.orderRepo.Search(ctx, f)
	if err != nil {
		logger.Error("orders.search.failed", "error", err)
		return nil, err
	}

	logger.Info("orders.search.ok", "count", len(recs), "query", f.Query, "sort", f.SortBy, "desc", f.Desc)
	return &SearchResult{Orders: recs, Summary: utils.Summarize(recs)}, nil
}

// SaveTable upserts every row of t, typically a re-imported and edited export.
func (s *Service) SaveTable(ctx context.Context, t *dataset.Table) (*repository.UpsertResult, error) {
	logger := common.LoggerFromContext(ctx, s.logger)
	if t.Len() == 0 {
		return nil, common.NewAppError("INVALID_ARGUMENT", "nothing to save", common.ErrInvalidInput)
	}
	if !t.HasColumn(constants.ColStyleCode) || !t.HasColumn(constants.ColOrderNumber) {
		return nil, common.NewAppError("INVALID_ARGUMENT", "table lacks OrderNumber or StyleCode columns", common.ErrInvalidInput)
	}

	res, err := s.orderRepo.UpsertBatch(ctx, utils.ToOrders(t))
	if err != nil {
		logger.Error("orders.save.failed", "rows", t.Len(), "error", err)
		return nil, err
	}
	logger.Info("orders.save.ok", "rows", t.Len(), "inserted", res.Stats.Inserted, "updated", res.Stats.Updated, "failed", res.Stats.Failed)
	return res, nil
}
