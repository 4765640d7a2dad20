package dataset

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ToNumber(t *testing.T) {
	tests := []struct {
		name   string
		in     Value
		want   Value
		wantOK bool
	}{
		{"thousands separator", Text("1,200"), Number(decimal.NewFromInt(1200)), true},
		{"decimal", Text(" 12.50 "), Number(decimal.RequireFromString("12.5")), true},
		{"blank text", Text("  "), Null(), true},
		{"null", Null(), Null(), true},
		{"number passes", Number(decimal.NewFromInt(3)), Number(decimal.NewFromInt(3)), true},
		{"garbage", Text("N/A"), Null(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.in.ToNumber()
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestValue_BlankAndString(t *testing.T) {
	assert.True(t, Null().IsBlank())
	assert.True(t, Text(" \t").IsBlank())
	assert.False(t, Text("x").IsBlank())
	assert.False(t, Number(decimal.Zero).IsBlank())

	assert.Equal(t, "", Null().String())
	assert.Equal(t, "1200", Number(decimal.RequireFromString("1200")).String())

	d, ok := Number(decimal.NewFromInt(7)).Decimal()
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(7)))
	_, ok = Text("7").Decimal()
	assert.False(t, ok)
}

func TestValue_NullDecimalRoundTrip(t *testing.T) {
	assert.True(t, FromNullDecimal(decimal.NullDecimal{}).IsNull())
	v := FromNullDecimal(decimal.NewNullDecimal(decimal.RequireFromString("9.99")))
	assert.True(t, v.IsNumber())
	assert.True(t, v.NullDecimal().Valid)
	assert.False(t, Text("9.99").NullDecimal().Valid)
}
