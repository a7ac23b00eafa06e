package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	Product
	Quantity int
}

// Subtotal is price * quantity, before discounts.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i CartItem) DiscountTotal() decimal.Decimal {
	return i.Discount.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Totals struct {
	Count    int
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

func ComputeTotals(items []CartItem) Totals {
	t := Totals{
		Gross:    decimal.Zero,
		Discount: decimal.Zero,
	}
	for _, item := range items {
		t.Count += item.Quantity
		t.Gross = t.Gross.Add(item.Subtotal())
		t.Discount = t.Discount.Add(item.DiscountTotal())
	}
	t.Total = t.Gross.Sub(t.Discount)
	return t
}

// CartSnapshot is everything a view needs to draw the cart.
type CartSnapshot struct {
	Items   []CartItem
	Totals  Totals
	Visible bool
}

func NewCartSnapshot(items []CartItem) CartSnapshot {
	return CartSnapshot{
		Items:   items,
		Totals:  ComputeTotals(items),
		Visible: len(items) > 0,
	}
}
