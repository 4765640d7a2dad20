package entity

import "github.com/shopspring/decimal"

// Order is one purchase-order line for data transfer between layers.
// (OrderNumber, StyleCode, ColorCode, Quantity) is its business key.
type Order struct {
	OrderNumber   string              `json:"order_number"`
	StyleCode     string              `json:"style_code"`
	Description   string              `json:"description"`
	ColorCode     string              `json:"color_code"`
	ColorName     string              `json:"color_name"`
	Quantity      decimal.NullDecimal `json:"quantity"`
	Price         decimal.NullDecimal `json:"price"`
	Total         decimal.NullDecimal `json:"total"`
	Fabric        string              `json:"fabric"`
	Composition   string              `json:"composition"`
	SizeXS        decimal.NullDecimal `json:"size_xs"`
	SizeS         decimal.NullDecimal `json:"size_s"`
	SizeM         decimal.NullDecimal `json:"size_m"`
	SizeL         decimal.NullDecimal `json:"size_l"`
	SizeXL        decimal.NullDecimal `json:"size_xl"`
	SizeXXL       decimal.NullDecimal `json:"size_xxl"`
	IssueDate     string              `json:"issue_date"`
	PickupDate    string              `json:"pickup_date"`
	OwnershipDate string              `json:"ownership_date"`
	Season        string              `json:"season"`
	Line          decimal.NullDecimal `json:"line"`
}

// Key returns the composite business key as text, for logs and error reports.
func (o *Order) Key() []string {
	q := ""
	if o.Quantity.Valid {
		q = o.Quantity.Decimal.String()
	}
	return []string{o.OrderNumber, o.StyleCode, o.ColorCode, q}
}

// Summary aggregates a set of order lines.
type Summary struct {
	Rows     int             `json:"rows"`
	Styles   int             `json:"styles"`
	Colors   int             `json:"colors"`
	Quantity decimal.Decimal `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// UpsertStats counts the outcome of persisting one batch.
type UpsertStats struct {
	Attempted int `json:"attempted"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
}
