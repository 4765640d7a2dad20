package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnPredicates(t *testing.T) {
	for _, c := range CurrencyColumns {
		assert.True(t, IsCurrencyColumn(c), c)
		assert.True(t, IsNumericColumn(c), c)
	}
	assert.False(t, IsCurrencyColumn(ColQuantity))
	assert.True(t, IsNumericColumn(ColLine))
	assert.False(t, IsNumericColumn(ColSeason))
	assert.True(t, IsCanonicalColumn(ColLine))
	assert.False(t, IsCanonicalColumn(ColSourceFile))
}
