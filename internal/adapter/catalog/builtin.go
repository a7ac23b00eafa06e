package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

const placeholderImage = "https://placehold.co/500x500"

// Builtin is the catalog the widget ships with.
func Builtin() []domain.Product {
	p := func(id int, name, price, discount string) domain.Product {
		product := domain.Product{
			ID:       id,
			Name:     name,
			Price:    decimal.RequireFromString(price),
			Discount: decimal.Zero,
			Image:    placeholderImage,
		}
		if discount != "" {
			product.Discount = decimal.RequireFromString(discount)
		}
		return product
	}

	return []domain.Product{
		p(1, "Product A", "19.99", ""),
		p(2, "Product B", "29.99", ""),
		p(3, "Product C", "99.99", "10.00"),
		p(4, "Product D", "9.99", ""),
		p(5, "Product E", "9.99", "5.00"),
		p(6, "Product F", "199.99", "50.00"),
		p(7, "Product G", "399.99", ""),
		p(8, "Product H", "59.99", ""),
	}
}

// Static serves a fixed product list.
type Static struct {
	products []domain.Product
}

func NewStatic(products []domain.Product) *Static {
	return &Static{products: products}
}

func (s *Static) ListProducts(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}
