package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrItemNotFound   = errors.New("cart item not found")
)

// CartStorage is the slice of storage the cart store needs.
type CartStorage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
}

// CartStore holds the cart of one tab. Items keep insertion order and are unique by product id.
type CartStore struct {
	catalog *domain.Catalog
	storage CartStorage
	key     string
	log     logrus.FieldLogger

	mu    sync.Mutex
	items []domain.CartItem

	// persistMu keeps storage writes in the order their snapshots were taken
	persistMu sync.Mutex
}

func NewCartStore(catalog *domain.Catalog, storage CartStorage, key string, log logrus.FieldLogger) *CartStore {
	if key == "" {
		key = domain.DefaultStorageKey
	}
	return &CartStore{
		catalog: catalog,
		storage: storage,
		key:     key,
		log:     log.WithField("key", key),
	}
}

func (s *CartStore) Key() string {
	return s.key
}

// Add increments the quantity of productID, or appends it with quantity 1.
func (s *CartStore) Add(productID int) (domain.CartItem, error) {
	product, ok := s.catalog.Find(productID)
	if !ok {
		return domain.CartItem{}, errors.Wrapf(ErrUnknownProduct, "product %d", productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == productID {
			s.items[i].Quantity++
			return s.items[i], nil
		}
	}

	item := domain.CartItem{Product: product, Quantity: 1}
	s.items = append(s.items, item)
	return item, nil
}

// Remove deletes the item at index; later items move down by one.
func (s *CartStore) Remove(index int) (domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return domain.CartItem{}, errors.Wrapf(ErrItemNotFound, "index %d", index)
	}

	removed := s.items[index]
	s.items = append(s.items[:index], s.items[index+1:]...)
	return removed, nil
}

func (s *CartStore) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *CartStore) Snapshot() domain.CartSnapshot {
	return domain.NewCartSnapshot(s.Items())
}

// Replace swaps the whole cart. Items are checked against the catalog first.
func (s *CartStore) Replace(items []domain.CartItem) {
	clean := s.sanitize(items)

	s.mu.Lock()
	s.items = clean
	s.mu.Unlock()
}

// ReplaceEncoded swaps the cart for a stored value. Undecodable values empty the cart.
func (s *CartStore) ReplaceEncoded(value string) {
	items, err := domain.DecodeCart(value)
	if err != nil {
		s.log.Warnf("discarding malformed cart: %v", err)
		items = nil
	}
	s.Replace(items)
}

// Load rehydrates the cart from storage. Missing, unreadable or corrupt state gives an empty cart.
func (s *CartStore) Load(ctx context.Context) {
	value, ok, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		s.log.Warnf("failed to read cart, starting empty: %v", err)
		s.Replace(nil)
		return
	}
	if !ok {
		s.Replace(nil)
		return
	}
	s.ReplaceEncoded(value)
}

func (s *CartStore) Persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	value, err := domain.EncodeCart(s.Items())
	if err != nil {
		return err
	}
	if err := s.storage.SetItem(ctx, s.key, value); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	return nil
}

// sanitize refreshes product fields from the catalog, drops unknown products and
// non-positive quantities, and merges duplicate ids.
func (s *CartStore) sanitize(items []domain.CartItem) []domain.CartItem {
	clean := make([]domain.CartItem, 0, len(items))
	seen := make(map[int]int, len(items))

	for _, item := range items {
		product, ok := s.catalog.Find(item.ID)
		if !ok {
			s.log.WithField("product_id", item.ID).Warn("dropping cart item for unknown product")
			continue
		}
		if item.Quantity < 1 {
			s.log.WithField("product_id", item.ID).Warnf("dropping cart item with quantity %d", item.Quantity)
			continue
		}
		if i, dup := seen[item.ID]; dup {
			clean[i].Quantity += item.Quantity
			continue
		}
		seen[item.ID] = len(clean)
		clean = append(clean, domain.CartItem{Product: product, Quantity: item.Quantity})
	}

	return clean
}
