package storage

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

// MemoryStorage is a process-local storage area and event bus.
// Tabs in one process share it the way browser tabs share localStorage.
type MemoryStorage struct {
	mu      sync.RWMutex
	items   map[string]string
	subs    map[int]chan domain.StorageEvent
	nextSub int
	log     logrus.FieldLogger
}

func NewMemoryStorage(log logrus.FieldLogger) *MemoryStorage {
	return &MemoryStorage{
		items: make(map[string]string),
		subs:  make(map[int]chan domain.StorageEvent),
		log:   log,
	}
}

func (m *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[key]
	return value, ok, nil
}

func (m *MemoryStorage) SetItem(_ context.Context, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.items[key]; ok && current == value {
		return false, nil
	}
	m.items[key] = value
	return true, nil
}

func (m *MemoryStorage) RemoveItem(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[key]; !ok {
		return false, nil
	}
	delete(m.items, key)
	return true, nil
}

// Publish never blocks; a subscriber whose buffer is full misses the event.
func (m *MemoryStorage) Publish(_ context.Context, event domain.StorageEvent) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, ch := range m.subs {
		select {
		case ch <- event:
		default:
			m.log.Warnf("subscriber %d is full, dropping event for %s", id, event.Key)
		}
	}
	return nil
}

func (m *MemoryStorage) Subscribe(ctx context.Context) (<-chan domain.StorageEvent, error) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	ch := make(chan domain.StorageEvent, subscriberBuffer)
	m.subs[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		close(ch)
		m.mu.Unlock()
	}()

	return ch, nil
}
