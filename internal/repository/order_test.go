package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, nil) })
	return db
}

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.RequireFromString(s)) }

func order(style, color, qty, price string) *entity.Order {
	o := &entity.Order{
		OrderNumber: "PO-100",
		StyleCode:   style,
		ColorCode:   color,
		ColorName:   "Navy",
		Price:       nd(price),
		IssueDate:   "2024-03-01",
		Season:      "SS24",
		Line:        nd("1"),
	}
	if qty != "" {
		o.Quantity = nd(qty)
		o.Total = decimal.NewNullDecimal(o.Quantity.Decimal.Mul(o.Price.Decimal))
	}
	return o
}

func TestUpsertBatch_InsertThenUpdateMutableOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTestDB(t), nil)

	first := order("A100", "01", "1200", "4.50")
	first.Description = "Tee"
	first.SizeM = nd("600")
	res, err := repo.UpsertBatch(ctx, []*entity.Order{first})
	require.NoError(t, err)
	assert.Equal(t, entity.UpsertStats{Attempted: 1, Inserted: 1}, res.Stats)

	second := order("A100", "01", "1200", "5.00")
	second.Description = "changed description"
	second.ColorName = "Black"
	second.Season = "FW24"
	second.SizeM = nd("900")
	second.Line = nd("7")
	second.IssueDate = "2024-09-30"
	second.PickupDate = "2024-10-15"
	res, err = repo.UpsertBatch(ctx, []*entity.Order{second})
	require.NoError(t, err)
	assert.Equal(t, entity.UpsertStats{Attempted: 1, Updated: 1}, res.Stats)

	got, err := repo.Search(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "5", got[0].Price.Decimal.String())
	assert.Equal(t, "Black", got[0].ColorName)
	assert.Equal(t, "FW24", got[0].Season)
	// not in the mutable set
	assert.Equal(t, "Tee", got[0].Description)
	assert.Equal(t, "600", got[0].SizeM.Decimal.String())
	assert.Equal(t, "1", got[0].Line.Decimal.String())
	assert.Equal(t, "2024-03-01", got[0].IssueDate)
	assert.Empty(t, got[0].PickupDate)
}

func TestUpsertBatch_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTestDB(t), nil)
	batch := []*entity.Order{order("A", "01", "10", "1"), order("B", "02", "20", "2")}

	_, err := repo.UpsertBatch(ctx, batch)
	require.NoError(t, err)
	res, err := repo.UpsertBatch(ctx, batch)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.Updated)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUpsertBatch_NullQuantityAlwaysInserts(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTestDB(t), nil)
	o := order("A", "01", "", "1")

	_, err := repo.UpsertBatch(ctx, []*entity.Order{o})
	require.NoError(t, err)
	res, err := repo.UpsertBatch(ctx, []*entity.Order{o})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.Inserted)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUpsertBatch_FailedRowDoesNotAbortBatch(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	// reject one style code so a single row fails inside the batch
	require.NoError(t, db.Driver.Exec(ctx, `CREATE TRIGGER reject_bad BEFORE INSERT ON "orders"
		WHEN NEW."StyleCode" = 'BAD' BEGIN SELECT RAISE(ABORT, 'rejected'); END`, []any{}, nil))
	repo := NewOrderRepository(db, nil)

	res, err := repo.UpsertBatch(ctx, []*entity.Order{
		order("A", "01", "1", "1"),
		order("BAD", "01", "1", "1"),
		order("C", "01", "1", "1"),
	})

	require.NoError(t, err)
	assert.Equal(t, entity.UpsertStats{Attempted: 3, Inserted: 2, Failed: 1}, res.Stats)
	require.Len(t, res.Errors, 1)
	var rowErr *common.RowPersistenceError
	require.True(t, errors.As(res.Errors[0], &rowErr))
	assert.Equal(t, []string{"PO-100", "BAD", "01", "1"}, rowErr.Key)
	assert.ErrorIs(t, res.Errors[0], common.ErrRowPersistence)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSearch_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTestDB(t), nil)
	a := order("TEE-1", "01", "100", "2")
	b := order("POLO-2", "02", "500", "3")
	b.ColorName = "Crimson"
	b.IssueDate = "2024-05-10"
	c := order("TEE-3", "03", "50", "1")
	c.OrderNumber = "PO-200"
	c.IssueDate = "2023-12-31"
	_, err := repo.UpsertBatch(ctx, []*entity.Order{a, b, c})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all sorted by issue date", Filter{}, []string{"TEE-3", "TEE-1", "POLO-2"}},
		{"quick search style", Filter{Query: "tee"}, []string{"TEE-3", "TEE-1"}},
		{"quick search color", Filter{Query: "crim"}, []string{"POLO-2"}},
		{"quick search order number", Filter{Query: "PO-200"}, []string{"TEE-3"}},
		{"min quantity", Filter{MinQuantity: nd("100")}, []string{"TEE-1", "POLO-2"}},
		{"date range inclusive", Filter{IssueFrom: "2024-03-01", IssueTo: "2024-05-10"}, []string{"TEE-1", "POLO-2"}},
		{"combined", Filter{StyleCode: "TEE", OrderNumber: "PO-100"}, []string{"TEE-1"}},
		{"sort quantity desc", Filter{SortBy: constants.ColQuantity, Desc: true}, []string{"POLO-2", "TEE-1", "TEE-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, tt.filter)
			require.NoError(t, err)
			styles := make([]string, len(got))
			for i, o := range got {
				styles[i] = o.StyleCode
			}
			assert.Equal(t, tt.want, styles)
		})
	}
}

func TestSearch_RejectsUnknownSortColumn(t *testing.T) {
	repo := NewOrderRepository(openTestDB(t), nil)

	_, err := repo.Search(context.Background(), Filter{SortBy: "1; DROP TABLE orders"})

	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestHealthCheck(t *testing.T) {
	assert.NoError(t, HealthCheck(context.Background(), openTestDB(t), 0, nil))
}

func TestDDL_QuotesIdentifiers(t *testing.T) {
	stmts := ddl()
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], `"OrderNumber" TEXT NOT NULL DEFAULT ''`)
	assert.Contains(t, stmts[0], `"Quantity" NUMERIC`)
	assert.Contains(t, stmts[1], `("OrderNumber", "StyleCode", "ColorCode", "Quantity")`)
}
