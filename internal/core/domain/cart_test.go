package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	items := []CartItem{
		{Product: product(1, "Product A", "19.99", ""), Quantity: 2},
		{Product: product(3, "Product C", "99.99", "10.00"), Quantity: 1},
		{Product: product(5, "Product E", "9.99", "5.00"), Quantity: 3},
	}

	totals := ComputeTotals(items)

	// gross: 39.98 + 99.99 + 29.97; discount: 10.00 + 15.00
	assert.Equal(t, 6, totals.Count)
	assert.Equal(t, "169.94", totals.Gross.StringFixed(2))
	assert.Equal(t, "25.00", totals.Discount.StringFixed(2))
	assert.Equal(t, "144.94", totals.Total.StringFixed(2))
}

func TestComputeTotals_Empty(t *testing.T) {
	totals := ComputeTotals(nil)

	assert.Equal(t, 0, totals.Count)
	assert.True(t, totals.Gross.IsZero())
	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestNewCartSnapshot_Visibility(t *testing.T) {
	assert.False(t, NewCartSnapshot(nil).Visible)

	snap := NewCartSnapshot([]CartItem{{Product: product(1, "Product A", "19.99", ""), Quantity: 1}})
	assert.True(t, snap.Visible)
	assert.Equal(t, "19.99", snap.Totals.Total.StringFixed(2))
}
