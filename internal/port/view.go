package port

import "github.com/rl1809/shop-cart/internal/core/domain"

// View receives rendered state. Implementations replace what they show on every call.
type View interface {
	RenderCatalog(products []domain.Product) error
	RenderCart(snapshot domain.CartSnapshot) error
}
