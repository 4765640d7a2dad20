// Package dataset holds the column-ordered, null-aware table model shared by page
// extraction, merge, export and import.
package dataset

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tells which branch of a Value is set.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
)

// Value is one cell: null, text or an exact decimal number.
type Value struct {
	kind Kind
	text string
	num  decimal.Decimal
}

// Null is the missing value.
func Null() Value { return Value{} }

// Text wraps s. Blank text is kept as text; use IsBlank to test for emptiness.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number wraps d.
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

// FromNullDecimal maps an invalid NullDecimal to Null.
func FromNullDecimal(d decimal.NullDecimal) Value {
	if !d.Valid {
		return Null()
	}
	return Number(d.Decimal)
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsBlank is true for null and whitespace-only text.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return strings.TrimSpace(v.text) == ""
	}
	return false
}

// String renders the cell as text; null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num.String()
	}
	return ""
}

// Decimal returns the number held by v.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind != KindNumber {
		return decimal.Zero, false
	}
	return v.num, true
}

// NullDecimal converts v for storage; anything but a number is invalid.
func (v Value) NullDecimal() decimal.NullDecimal {
	if v.kind != KindNumber {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(v.num)
}

// Equal compares kinds and contents; numbers compare by value, so 1200 equals 1200.00.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num.Equal(o.num)
	}
	return true
}

// ToNumber coerces v. Numbers pass through and blank cells become Null. Text that
// does not parse becomes Null with ok=false so the caller can report it.
func (v Value) ToNumber() (out Value, ok bool) {
	switch v.kind {
	case KindNumber:
		return v, true
	case KindNull:
		return v, true
	}
	if strings.TrimSpace(v.text) == "" {
		return Null(), true
	}
	d, err := ParseNumber(v.text)
	if err != nil {
		return Null(), false
	}
	return Number(d), true
}

// ParseNumber strips thousands separators and surrounding space, then parses s.
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	return decimal.NewFromString(s)
}
