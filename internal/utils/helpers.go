package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
	"github.com/joseph-ayodele/purchase-orders/internal/entity"
)

func str(r dataset.Row, col string) string {
	return strings.TrimSpace(r.Get(col).String())
}

// num re-coerces a cell; text that is not a number reads as null.
func num(r dataset.Row, col string) decimal.NullDecimal {
	v, _ := r.Get(col).ToNumber()
	return v.NullDecimal()
}

// ToOrder maps a merged or re-imported row onto an order line. Extra columns are ignored.
func ToOrder(r dataset.Row) *entity.Order {
	return &entity.Order{
		OrderNumber:   str(r, constants.ColOrderNumber),
		StyleCode:     str(r, constants.ColStyleCode),
		Description:   str(r, constants.ColDescription),
		ColorCode:     str(r, constants.ColColorCode),
		ColorName:     str(r, constants.ColColorName),
		Quantity:      num(r, constants.ColQuantity),
		Price:         num(r, constants.ColPrice),
		Total:         num(r, constants.ColTotal),
		Fabric:        str(r, constants.ColFabric),
		Composition:   str(r, constants.ColComposition),
		SizeXS:        num(r, constants.ColSizeXS),
		SizeS:         num(r, constants.ColSizeS),
		SizeM:         num(r, constants.ColSizeM),
		SizeL:         num(r, constants.ColSizeL),
		SizeXL:        num(r, constants.ColSizeXL),
		SizeXXL:       num(r, constants.ColSizeXXL),
		IssueDate:     str(r, constants.ColIssueDate),
		PickupDate:    str(r, constants.ColPickupDate),
		OwnershipDate: str(r, constants.ColOwnershipDate),
		Season:        str(r, constants.ColSeason),
		Line:          num(r, constants.ColLine),
	}
}

// ToOrders maps every row of t.
func ToOrders(t *dataset.Table) []*entity.Order {
	if t == nil {
		return nil
	}
	out := make([]*entity.Order, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = ToOrder(r)
	}
	return out
}

func text(s string) dataset.Value {
	if s == "" {
		return dataset.Null()
	}
	return dataset.Text(s)
}

// ToRow is the inverse of ToOrder over the canonical columns.
func ToRow(o *entity.Order) dataset.Row {
	return dataset.Row{
		constants.ColOrderNumber:   text(o.OrderNumber),
		constants.ColStyleCode:     text(o.StyleCode),
		constants.ColDescription:   text(o.Description),
		constants.ColColorCode:     text(o.ColorCode),
		constants.ColColorName:     text(o.ColorName),
		constants.ColQuantity:      dataset.FromNullDecimal(o.Quantity),
		constants.ColPrice:         dataset.FromNullDecimal(o.Price),
		constants.ColTotal:         dataset.FromNullDecimal(o.Total),
		constants.ColFabric:        text(o.Fabric),
		constants.ColComposition:   text(o.Composition),
		constants.ColSizeXS:        dataset.FromNullDecimal(o.SizeXS),
		constants.ColSizeS:         dataset.FromNullDecimal(o.SizeS),
		constants.ColSizeM:         dataset.FromNullDecimal(o.SizeM),
		constants.ColSizeL:         dataset.FromNullDecimal(o.SizeL),
		constants.ColSizeXL:        dataset.FromNullDecimal(o.SizeXL),
		constants.ColSizeXXL:       dataset.FromNullDecimal(o.SizeXXL),
		constants.ColIssueDate:     text(o.IssueDate),
		constants.ColPickupDate:    text(o.PickupDate),
		constants.ColOwnershipDate: text(o.OwnershipDate),
		constants.ColSeason:        text(o.Season),
		constants.ColLine:          dataset.FromNullDecimal(o.Line),
	}
}

// OrdersToTable builds a canonical-column table from orders.
func OrdersToTable(orders []*entity.Order) *dataset.Table {
	t := dataset.NewTable(constants.CanonicalColumns...)
	for _, o := range orders {
		t.Rows = append(t.Rows, ToRow(o))
	}
	return t
}

// Summarize counts rows, distinct styles and non-blank colors, and sums Quantity and Total.
func Summarize(orders []*entity.Order) entity.Summary {
	styles := make(map[string]struct{})
	colors := make(map[string]struct{})
	s := entity.Summary{Rows: len(orders), Quantity: decimal.Zero, Total: decimal.Zero}
	for _, o := range orders {
		if o.StyleCode != "" {
			styles[o.StyleCode] = struct{}{}
		}
		if o.ColorName != "" {
			colors[o.ColorName] = struct{}{}
		}
		if o.Quantity.Valid {
			s.Quantity = s.Quantity.Add(o.Quantity.Decimal)
		}
		if o.Total.Valid {
			s.Total = s.Total.Add(o.Total.Decimal)
		}
	}
	s.Styles = len(styles)
	s.Colors = len(colors)
	return s
}

func ParseYMD(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	// strip time to midnight UTC to match DATE semantics
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
