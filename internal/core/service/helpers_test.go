package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

// fakeStorage is a storage area and bus shared by every tab in a test.
type fakeStorage struct {
	mu      sync.Mutex
	items   map[string]string
	subs    []chan domain.StorageEvent
	sets    int
	events  []domain.StorageEvent
	failGet error
	failSet error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{items: make(map[string]string)}
}

func (f *fakeStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failGet != nil {
		return "", false, f.failGet
	}
	v, ok := f.items[key]
	return v, ok, nil
}

func (f *fakeStorage) SetItem(ctx context.Context, key, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSet != nil {
		return false, f.failSet
	}
	f.sets++
	if cur, ok := f.items[key]; ok && cur == value {
		return false, nil
	}
	f.items[key] = value
	return true, nil
}

func (f *fakeStorage) RemoveItem(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[key]; !ok {
		return false, nil
	}
	delete(f.items, key)
	return true, nil
}

func (f *fakeStorage) Publish(ctx context.Context, event domain.StorageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event)
	for _, ch := range f.subs {
		ch <- event
	}
	return nil
}

func (f *fakeStorage) Subscribe(ctx context.Context) (<-chan domain.StorageEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan domain.StorageEvent, 100)
	f.subs = append(f.subs, ch)
	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, c := range f.subs {
			if c == ch {
				f.subs = append(f.subs[:i], f.subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (f *fakeStorage) value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	return v, ok
}

func (f *fakeStorage) publishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// fakeView records what the widget drew.
type fakeView struct {
	mu        sync.Mutex
	catalog   []domain.Product
	snapshots []domain.CartSnapshot
	failCart  error
}

func (v *fakeView) RenderCatalog(products []domain.Product) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.catalog = products
	return nil
}

func (v *fakeView) RenderCart(snapshot domain.CartSnapshot) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failCart != nil {
		return v.failCart
	}
	v.snapshots = append(v.snapshots, snapshot)
	return nil
}

func (v *fakeView) last() (domain.CartSnapshot, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.snapshots) == 0 {
		return domain.CartSnapshot{}, 0
	}
	return v.snapshots[len(v.snapshots)-1], len(v.snapshots)
}

func testLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()

	mk := func(id int, name, price, discount string) domain.Product {
		p := domain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Discount: decimal.Zero}
		if discount != "" {
			p.Discount = decimal.RequireFromString(discount)
		}
		return p
	}

	c, err := domain.NewCatalog([]domain.Product{
		mk(1, "Product A", "19.99", ""),
		mk(2, "Product B", "29.99", ""),
		mk(3, "Product C", "99.99", "10.00"),
		mk(5, "Product E", "9.99", "5.00"),
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}
