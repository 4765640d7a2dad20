package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
	"github.com/joseph-ayodele/purchase-orders/internal/orders"
	"github.com/joseph-ayodele/purchase-orders/internal/repository"
)

func sampleTable() *dataset.Table {
	t := dataset.NewTable(constants.CanonicalColumns...)
	t.AddColumn("Remarks")
	t.Rows = []dataset.Row{
		{
			constants.ColOrderNumber: dataset.Text("PO-1"),
			constants.ColStyleCode:   dataset.Text("A100"),
			constants.ColDescription: dataset.Text("Tee, crew neck"),
			constants.ColQuantity:    dataset.Number(decimal.NewFromInt(1200)),
			constants.ColPrice:       dataset.Number(decimal.RequireFromString("4.5")),
			constants.ColTotal:       dataset.Number(decimal.RequireFromString("5400")),
			constants.ColSizeM:       dataset.Number(decimal.NewFromInt(600)),
			constants.ColIssueDate:   dataset.Text("2024-03-01"),
			constants.ColLine:        dataset.Number(decimal.NewFromInt(1)),
			"Remarks":                dataset.Text("rush"),
		},
		{
			constants.ColOrderNumber: dataset.Text("PO-1"),
			constants.ColStyleCode:   dataset.Text("B200"),
			constants.ColPrice:       dataset.Number(decimal.RequireFromString("12.345")),
			constants.ColTotal:       dataset.Number(decimal.RequireFromString("9.99")),
			constants.ColLine:        dataset.Number(decimal.NewFromInt(2)),
		},
	}
	return t
}

func TestWriteCSV_Formatting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "OrderNumber,StyleCode,Description,"))
	assert.True(t, strings.HasSuffix(lines[0], ",Line,Remarks"))
	assert.Contains(t, lines[1], `PO-1,A100,"Tee, crew neck",,,1200,4.50,5400.00,`)
	assert.Contains(t, lines[2], ",12.345,9.99,")
}

func assertSameNumbers(t *testing.T, want, got *dataset.Table) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	for i := range want.Rows {
		for _, col := range constants.NumericColumns {
			w, g := want.Rows[i].Get(col), got.Rows[i].Get(col)
			assert.True(t, w.Equal(g), "row %d %s: want %v got %v", i, col, w, g)
		}
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	in := sampleTable()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))

	out, warnings, err := ReadCSV(&buf)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, in.Columns, out.Columns)
	assertSameNumbers(t, in, out)
	assert.Equal(t, "Tee, crew neck", out.Rows[0].Get(constants.ColDescription).String())
	assert.True(t, out.Rows[1].Get(constants.ColDescription).IsNull())
}

func TestCSV_RoundTripKeepsPricePrecision(t *testing.T) {
	in := dataset.NewTable(constants.ColStyleCode, constants.ColPrice, constants.ColTotal)
	in.Rows = []dataset.Row{{
		constants.ColStyleCode: dataset.Text("A100"),
		constants.ColPrice:     dataset.Number(decimal.RequireFromString("1.125")),
		constants.ColTotal:     dataset.Number(decimal.RequireFromString("1350.005")),
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))
	assert.Contains(t, buf.String(), "A100,1.125,1350.005")

	out, _, err := ReadCSV(&buf)

	require.NoError(t, err)
	price, ok := out.Rows[0].Get(constants.ColPrice).Decimal()
	require.True(t, ok)
	assert.Equal(t, "1.125", price.String())
	total, ok := out.Rows[0].Get(constants.ColTotal).Decimal()
	require.True(t, ok)
	assert.Equal(t, "1350.005", total.String())
}

func TestXLSX_RoundTrip(t *testing.T) {
	in := sampleTable()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, in))

	out, warnings, err := ReadXLSX(&buf)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, in.Columns, out.Columns)
	// xlsx keeps full precision, so compare unrounded
	for i := range in.Rows {
		for _, col := range constants.NumericColumns {
			assert.True(t, in.Rows[i].Get(col).Equal(out.Rows[i].Get(col)), "row %d %s", i, col)
		}
	}
	assert.Equal(t, "rush", out.Rows[0].Get("Remarks").String())
}

func TestReadCSV_CoercionWarnings(t *testing.T) {
	src := "OrderNumber,StyleCode,Quantity\nPO-1,A,\"1,500\"\nPO-1,B,many\n"

	out, warnings, err := ReadCSV(strings.NewReader(src))

	require.NoError(t, err)
	q, ok := out.Rows[0].Get(constants.ColQuantity).Decimal()
	require.True(t, ok)
	assert.True(t, q.Equal(decimal.NewFromInt(1500)))
	assert.True(t, out.Rows[1].Get(constants.ColQuantity).IsNull())
	require.Len(t, warnings, 1)
	var fe *common.FieldCoercionError
	require.True(t, errors.As(warnings[0], &fe))
	assert.Equal(t, "many", fe.Value)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("edited_po.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestService_ExportOrders(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	defer repository.Close(db, nil)
	osvc := orders.NewService(repository.NewOrderRepository(db, nil), nil)
	_, err = osvc.SaveTable(ctx, sampleTable())
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := NewService(osvc, nil).ExportOrders(ctx, orders.SearchRequest{StyleCode: "A1"}, FormatCSV, &buf)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	out, _, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, constants.CanonicalColumns, out.Columns)
	total, ok := out.Rows[0].Get(constants.ColTotal).Decimal()
	require.True(t, ok)
	assert.True(t, total.Equal(decimal.NewFromInt(5400)))
}
