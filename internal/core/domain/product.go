package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

type Product struct {
	ID       int
	Name     string
	Price    decimal.Decimal
	Discount decimal.Decimal // zero when the product has no discount
	Image    string
}

func (p Product) HasDiscount() bool {
	return p.Discount.IsPositive()
}

// FinalPrice is the unit price after the discount is applied.
func (p Product) FinalPrice() decimal.Decimal {
	return p.Price.Sub(p.Discount)
}

// Catalog is the fixed, ordered list of purchasable products.
type Catalog struct {
	products []Product
	byID     map[int]int
}

func NewCatalog(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}

	for _, p := range products {
		if p.ID <= 0 {
			return nil, errors.Wrapf(ErrInvalidCatalog, "product %q: id must be positive", p.Name)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, errors.Wrapf(ErrInvalidCatalog, "duplicate product id %d", p.ID)
		}
		if p.Name == "" {
			return nil, errors.Wrapf(ErrInvalidCatalog, "product %d: empty name", p.ID)
		}
		if !p.Price.IsPositive() {
			return nil, errors.Wrapf(ErrInvalidCatalog, "product %d: price must be positive", p.ID)
		}
		if p.Discount.IsNegative() || p.Discount.GreaterThan(p.Price) {
			return nil, errors.Wrapf(ErrInvalidCatalog, "product %d: discount out of range", p.ID)
		}

		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}

	return c, nil
}

func (c *Catalog) Find(id int) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Products returns a copy of the catalog in load order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	return len(c.products)
}
