package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
	"github.com/joseph-ayodele/purchase-orders/internal/entity"
)

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.RequireFromString(s)) }

func TestToOrder_CoercesAndTrims(t *testing.T) {
	row := dataset.Row{
		constants.ColOrderNumber: dataset.Text(" PO-1 "),
		constants.ColStyleCode:   dataset.Text("A100"),
		constants.ColQuantity:    dataset.Text("1,200"),
		constants.ColPrice:       dataset.Number(decimal.RequireFromString("4.5")),
		constants.ColTotal:       dataset.Text("n/a"),
		constants.ColLine:        dataset.Text("3"),
		"Extra":                  dataset.Text("ignored"),
	}

	o := ToOrder(row)

	assert.Equal(t, "PO-1", o.OrderNumber)
	require.True(t, o.Quantity.Valid)
	assert.True(t, o.Quantity.Decimal.Equal(decimal.NewFromInt(1200)))
	assert.False(t, o.Total.Valid)
	assert.True(t, o.Line.Valid)
	assert.Equal(t, "", o.ColorCode)
	assert.Equal(t, []string{"PO-1", "A100", "", "1200"}, o.Key())
}

func TestOrdersToTable_RoundTrip(t *testing.T) {
	in := &entity.Order{OrderNumber: "PO-1", StyleCode: "A", Quantity: nd("10"), Total: nd("99.90"), IssueDate: "2024-01-02"}

	tbl := OrdersToTable([]*entity.Order{in})
	out := ToOrders(tbl)

	require.Len(t, out, 1)
	assert.Equal(t, constants.CanonicalColumns, tbl.Columns)
	assert.Equal(t, in.OrderNumber, out[0].OrderNumber)
	assert.True(t, out[0].Total.Decimal.Equal(in.Total.Decimal))
	assert.False(t, out[0].Price.Valid)
	assert.True(t, tbl.Rows[0].Get(constants.ColColorName).IsNull())
}

func TestSummarize(t *testing.T) {
	orders := []*entity.Order{
		{StyleCode: "A", ColorName: "Red", Quantity: nd("100"), Total: nd("10.50")},
		{StyleCode: "A", ColorName: "Blue", Quantity: nd("50"), Total: nd("5.25")},
		{StyleCode: "B", ColorName: "", Total: nd("1")},
	}

	s := Summarize(orders)

	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 2, s.Styles)
	assert.Equal(t, 2, s.Colors)
	assert.True(t, s.Quantity.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "16.75", s.Total.StringFixed(2))
}

func TestParseYMD(t *testing.T) {
	d, err := ParseYMD("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	_, err = ParseYMD("29/02/2024")
	assert.Error(t, err)
}
