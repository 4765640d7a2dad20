package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/entity"
	"github.com/joseph-ayodele/purchase-orders/internal/extract"
	"github.com/joseph-ayodele/purchase-orders/internal/ingest"
	"github.com/joseph-ayodele/purchase-orders/internal/merge"
	"github.com/joseph-ayodele/purchase-orders/internal/repository"
)

const firstPage = `| OrderNumber | IssueDate | Season | Line | StyleCode | ColorCode | ColorName | Quantity | Price | Total |
|---|---|---|---|---|---|---|---|---|---|
| | | | 2 | A200 | 02 | Black | 300 | 5 | 1500 |
| PO-7 | 2024-03-01 | SS24 | 1 | A100 | 01 | Navy | 1,200 | 4.50 | 5400 |

Page total: 1500
`

const secondPage = "```json\n" + `[
  {"Line": 3, "StyleCode": "B300", "ColorCode": "07", "ColorName": "Sand", "Quantity": "n/a", "Price": 9.5}
]` + "\n```\n"

func pages() []extract.Page {
	return []extract.Page{
		{Index: 1, Source: "po_1.md", Text: firstPage},
		{Index: 2, Source: "po_2.json", Text: secondPage},
		{Index: 3, Source: "po_3.txt", Text: "signature and stamp only"},
	}
}

func newProcessor(t *testing.T, withStore bool) *Processor {
	t.Helper()
	var orders repository.OrderRepository
	if withStore {
		db, err := repository.Open(context.Background(), repository.Config{DSN: ":memory:"}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { repository.Close(db, nil) })
		orders = repository.NewOrderRepository(db, nil)
	}
	return NewProcessor(nil, extract.NewExtractor(nil), merge.New(merge.DefaultConfig(), nil), ingest.NewFSIngestor(nil), orders, 2)
}

func TestProcessPages_MergesAcrossPages(t *testing.T) {
	p := newProcessor(t, false)

	res, err := p.ProcessPages(context.Background(), "PO-7", pages(), false)

	require.NoError(t, err)
	assert.NotEmpty(t, res.DocumentID)
	assert.Nil(t, res.Upsert)
	require.Len(t, res.Orders, 3)

	var styles []string
	for _, o := range res.Orders {
		styles = append(styles, o.StyleCode)
		assert.Equal(t, "PO-7", o.OrderNumber)
		assert.Equal(t, "2024-03-01", o.IssueDate)
		assert.Equal(t, "SS24", o.Season)
	}
	assert.Equal(t, []string{"A100", "A200", "B300"}, styles)
	assert.False(t, res.Orders[2].Quantity.Valid)

	assert.Equal(t, 3, res.Summary.Rows)
	assert.True(t, res.Summary.Quantity.Equal(decimal.NewFromInt(1500)))
	assert.True(t, res.Summary.Total.Equal(decimal.NewFromInt(6900)))

	require.Len(t, res.Pages, 3)
	assert.Equal(t, "tabular", res.Pages[0].Strategy)
	assert.Equal(t, 2, res.Pages[0].Rows)
	assert.Equal(t, "structured", res.Pages[1].Strategy)
	assert.NotEmpty(t, res.Pages[2].Error)

	require.Len(t, res.Issues, 2)
	assert.Len(t, res.Warnings, 2)
	var coerceErr *common.FieldCoercionError
	require.True(t, errors.As(res.Issues[0], &coerceErr))
	assert.Equal(t, "Quantity", coerceErr.Column)
	assert.Equal(t, 2, coerceErr.Page)
	var pageErr *common.PageFormatError
	require.True(t, errors.As(res.Issues[1], &pageErr))
	assert.Equal(t, 3, pageErr.Page)
}

func TestProcessPages_PersistIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := newProcessor(t, true)

	first, err := p.ProcessPages(ctx, "PO-7", pages(), true)
	require.NoError(t, err)
	require.NotNil(t, first.Upsert)
	assert.Equal(t, entity.UpsertStats{Attempted: 3, Inserted: 3}, *first.Upsert)

	second, err := p.ProcessPages(ctx, "PO-7", pages(), true)
	require.NoError(t, err)
	// the row without a quantity never matches an existing key
	assert.Equal(t, entity.UpsertStats{Attempted: 3, Inserted: 1, Updated: 2}, *second.Upsert)
	assert.NotEqual(t, first.DocumentID, second.DocumentID)

	n, err := p.Orders.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestProcessPages_PersistWithoutStore(t *testing.T) {
	_, err := newProcessor(t, false).ProcessPages(context.Background(), "PO-7", pages(), true)

	assert.ErrorIs(t, err, ErrPersistenceDisabled)
}

func TestProcessPages_EmptyDocument(t *testing.T) {
	bad := []extract.Page{
		{Index: 1, Source: "a.md", Text: "nothing here"},
		{Index: 2, Source: "b.md", Text: "   "},
	}

	res, err := newProcessor(t, true).ProcessPages(context.Background(), "empty", bad, true)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, common.ErrDocumentEmpty)
}

func TestProcessPages_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newProcessor(t, false).ProcessPages(ctx, "PO-7", pages(), false)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "PO-7")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, pg := range pages() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, pg.Source), []byte(pg.Text), 0o644))
	}

	res, err := newProcessor(t, false).ProcessDirectory(context.Background(), dir, false)

	require.NoError(t, err)
	assert.Equal(t, "PO-7", res.Name)
	assert.Len(t, res.Orders, 3)
	assert.True(t, strings.HasPrefix(res.Pages[0].Source, "po_1"))
}

func TestProcessDirectory_Missing(t *testing.T) {
	_, err := newProcessor(t, false).ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), false)

	assert.ErrorIs(t, err, common.ErrNotFound)
}
