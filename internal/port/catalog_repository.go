package port

import (
	"context"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

type CatalogRepository interface {
	// ListProducts returns every product in display order
	ListProducts(ctx context.Context) ([]domain.Product, error)
}
