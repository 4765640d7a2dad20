package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/entity"
)

// Filter selects orders. All set criteria are combined with AND; Query is the quick
// search and matches OrderNumber, StyleCode or ColorName.
type Filter struct {
	Query       string
	OrderNumber string
	StyleCode   string
	ColorName   string
	MinQuantity decimal.NullDecimal
	// IssueFrom and IssueTo are inclusive YYYY-MM-DD bounds.
	IssueFrom string
	IssueTo   string
	SortBy    string
	Desc      bool
	Limit     int
}

// UpsertResult reports a batch outcome. Errors holds one *common.RowPersistenceError per failed row.
type UpsertResult struct {
	Stats  entity.UpsertStats
	Errors []error
}

type OrderRepository interface {
	UpsertBatch(ctx context.Context, orders []*entity.Order) (*UpsertResult, error)
	Search(ctx context.Context, f Filter) ([]*entity.Order, error)
	Count(ctx context.Context) (int, error)
}

type orderRepository struct {
	db     *DB
	logger *slog.Logger
	mu     sync.Mutex // serializes batches
	now    func() time.Time
}

func NewOrderRepository(db *DB, logger *slog.Logger) OrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &orderRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

const rowSavepoint = "row_upsert"

// UpsertBatch writes every order inside one transaction. Each row gets its own
// savepoint, so a failing row is rolled back and reported while the rest commit.
// An existing key only has its mutable columns rewritten.
func (r *orderRepository) UpsertBatch(ctx context.Context, orders []*entity.Order) (*UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := common.LoggerFromContext(ctx, r.logger)
	res := &UpsertResult{}
	if len(orders) == 0 {
		return res, nil
	}

	tx, err := r.db.Driver.Tx(ctx)
	if err != nil {
		logger.Error("upsert.begin.failed", "error", err)
		return nil, common.NewAppError("DB_ERROR", "begin transaction", errors.Join(common.ErrDatabase, err))
	}

	now := r.now().UTC()
	for _, o := range orders {
		res.Stats.Attempted++
		existed, err := r.upsertRow(ctx, tx, o, now)
		if err != nil {
			res.Stats.Failed++
			rowErr := &common.RowPersistenceError{Key: o.Key(), Cause: err}
			res.Errors = append(res.Errors, rowErr)
			logger.Warn("upsert.row.failed", "key", o.Key(), "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if existed {
			res.Stats.Updated++
		} else {
			res.Stats.Inserted++
		}
	}

	if err := ctx.Err(); err != nil {
		_ = tx.Rollback()
		logger.Warn("upsert.cancelled", "attempted", res.Stats.Attempted, "error", err)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		logger.Error("upsert.commit.failed", "error", err)
		return nil, common.NewAppError("DB_ERROR", "commit transaction", errors.Join(common.ErrDatabase, err))
	}

	logger.Info("upsert.ok",
		"attempted", res.Stats.Attempted,
		"inserted", res.Stats.Inserted,
		"updated", res.Stats.Updated,
		"failed", res.Stats.Failed,
	)
	return res, nil
}

// upsertRow reports whether the key already existed.
func (r *orderRepository) upsertRow(ctx context.Context, tx dialect.Tx, o *entity.Order, now time.Time) (bool, error) {
	if err := tx.Exec(ctx, "SAVEPOINT "+rowSavepoint, []any{}, nil); err != nil {
		return false, err
	}
	existed, err := r.upsertInSavepoint(ctx, tx, o, now)
	if err != nil {
		if rbErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+rowSavepoint, []any{}, nil); rbErr != nil {
			return false, errors.Join(err, rbErr)
		}
		return false, err
	}
	return existed, tx.Exec(ctx, "RELEASE SAVEPOINT "+rowSavepoint, []any{}, nil)
}

func (r *orderRepository) upsertInSavepoint(ctx context.Context, tx dialect.Tx, o *entity.Order, now time.Time) (bool, error) {
	existed, err := r.keyExists(ctx, tx, o)
	if err != nil {
		return false, fmt.Errorf("probe key: %w", err)
	}
	query, args, err := r.upsertQuery(o, now)
	if err != nil {
		return false, fmt.Errorf("build upsert: %w", err)
	}
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		return false, err
	}
	return existed, nil
}

// keyExists probes the business key. A NULL quantity never matches, which is also how
// the unique index treats it, so such rows always insert.
func (r *orderRepository) keyExists(ctx context.Context, tx dialect.Tx, o *entity.Order) (bool, error) {
	if !o.Quantity.Valid {
		return false, nil
	}
	d := entsql.Dialect(r.db.Dialect())
	query, args := d.Select().Count().
		From(d.Table(ordersTable)).
		Where(entsql.And(
			entsql.EQ(constants.ColOrderNumber, o.OrderNumber),
			entsql.EQ(constants.ColStyleCode, o.StyleCode),
			entsql.EQ(constants.ColColorCode, o.ColorCode),
			entsql.EQ(constants.ColQuantity, o.Quantity),
		)).
		Query()

	var rows entsql.Rows
	if err := tx.Query(ctx, query, args, &rows); err != nil {
		return false, err
	}
	defer rows.Close()
	n, err := entsql.ScanInt(rows)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *orderRepository) upsertQuery(o *entity.Order, now time.Time) (string, []any, error) {
	columns := append(append([]string(nil), constants.CanonicalColumns...), colCreatedAt, colUpdatedAt)
	values := append(orderValues(o), now, now)
	return entsql.Dialect(r.db.Dialect()).
		Insert(ordersTable).
		Columns(columns...).
		Values(values...).
		OnConflict(
			entsql.ConflictColumns(constants.KeyColumns...),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range constants.MutableColumns {
					u.SetExcluded(c)
				}
				u.SetExcluded(colUpdatedAt)
			}),
		).
		QueryErr()
}

// orderValues lists o's fields in canonical column order.
func orderValues(o *entity.Order) []any {
	return []any{
		o.OrderNumber, o.StyleCode, o.Description, o.ColorCode, o.ColorName,
		o.Quantity, o.Price, o.Total, o.Fabric, o.Composition,
		o.SizeXS, o.SizeS, o.SizeM, o.SizeL, o.SizeXL, o.SizeXXL,
		o.IssueDate, o.PickupDate, o.OwnershipDate, o.Season, o.Line,
	}
}

// orderDest returns scan destinations for o in canonical column order.
func orderDest(o *entity.Order) []any {
	return []any{
		&o.OrderNumber, &o.StyleCode, &o.Description, &o.ColorCode, &o.ColorName,
		&o.Quantity, &o.Price, &o.Total, &o.Fabric, &o.Composition,
		&o.SizeXS, &o.SizeS, &o.SizeM, &o.SizeL, &o.SizeXL, &o.SizeXXL,
		&o.IssueDate, &o.PickupDate, &o.OwnershipDate, &o.Season, &o.Line,
	}
}

// Search returns matching orders in canonical column order. SortBy must be a
// canonical column; it defaults to IssueDate ascending.
func (r *orderRepository) Search(ctx context.Context, f Filter) ([]*entity.Order, error) {
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = constants.ColIssueDate
	}
	if !constants.IsCanonicalColumn(sortBy) {
		return nil, common.NewAppError("INVALID_ARGUMENT", fmt.Sprintf("cannot sort by %q", sortBy), common.ErrInvalidInput)
	}

	d := entsql.Dialect(r.db.Dialect())
	sel := d.Select(constants.CanonicalColumns...).From(d.Table(ordersTable))
	if p := filterPredicate(f); p != nil {
		sel.Where(p)
	}
	order := entsql.Asc(sortBy)
	if f.Desc {
		order = entsql.Desc(sortBy)
	}
	// ties break on Line
	sel.OrderBy(order, entsql.Asc(constants.ColLine))
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		r.logger.Error("failed to search orders", "error", err)
		return nil, common.NewAppError("DB_ERROR", "search orders", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	var out []*entity.Order
	for rows.Next() {
		o := &entity.Order{}
		if err := rows.Scan(orderDest(o)...); err != nil {
			r.logger.Error("failed to scan order", "error", err)
			return nil, common.NewAppError("DB_ERROR", "scan order", errors.Join(common.ErrDatabase, err))
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "search orders", errors.Join(common.ErrDatabase, err))
	}
	return out, nil
}

func filterPredicate(f Filter) *entsql.Predicate {
	var preds []*entsql.Predicate
	if f.Query != "" {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold(constants.ColOrderNumber, f.Query),
			entsql.ContainsFold(constants.ColStyleCode, f.Query),
			entsql.ContainsFold(constants.ColColorName, f.Query),
		))
	}
	if f.OrderNumber != "" {
		preds = append(preds, entsql.ContainsFold(constants.ColOrderNumber, f.OrderNumber))
	}
	if f.StyleCode != "" {
		preds = append(preds, entsql.ContainsFold(constants.ColStyleCode, f.StyleCode))
	}
	if f.ColorName != "" {
		preds = append(preds, entsql.ContainsFold(constants.ColColorName, f.ColorName))
	}
	if f.MinQuantity.Valid {
		preds = append(preds, entsql.GTE(constants.ColQuantity, f.MinQuantity.Decimal))
	}
	if f.IssueFrom != "" {
		preds = append(preds, entsql.GTE(constants.ColIssueDate, f.IssueFrom))
	}
	if f.IssueTo != "" {
		preds = append(preds, entsql.LTE(constants.ColIssueDate, f.IssueTo))
	}
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	}
	return entsql.And(preds...)
}

// Count returns the number of stored order lines.
func (r *orderRepository) Count(ctx context.Context) (int, error) {
	d := entsql.Dialect(r.db.Dialect())
	query, args := d.Select().Count().From(d.Table(ordersTable)).Query()
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return 0, common.NewAppError("DB_ERROR", "count orders", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()
	return entsql.ScanInt(rows)
}
