package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/port"
)

// TabStorage is one tab's handle on the shared storage area. Writes that change
// a value are announced on the bus, and Events hides the tab's own announcements,
// which is how browser storage events behave.
type TabStorage struct {
	area   port.StorageArea
	bus    port.StorageBus
	origin string
	log    logrus.FieldLogger
}

func NewTabStorage(area port.StorageArea, bus port.StorageBus, log logrus.FieldLogger) *TabStorage {
	origin := uuid.NewString()
	return &TabStorage{
		area:   area,
		bus:    bus,
		origin: origin,
		log:    log.WithField("origin", origin),
	}
}

func (s *TabStorage) Origin() string {
	return s.origin
}

func (s *TabStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	return s.area.GetItem(ctx, key)
}

func (s *TabStorage) SetItem(ctx context.Context, key, value string) error {
	changed, err := s.area.SetItem(ctx, key, value)
	if err != nil {
		return err
	}
	if changed {
		s.announce(ctx, domain.StorageEvent{Key: key, NewValue: value})
	}
	return nil
}

func (s *TabStorage) RemoveItem(ctx context.Context, key string) error {
	removed, err := s.area.RemoveItem(ctx, key)
	if err != nil {
		return err
	}
	if removed {
		s.announce(ctx, domain.StorageEvent{Key: key, Removed: true})
	}
	return nil
}

// announce is best-effort: the write already happened.
func (s *TabStorage) announce(ctx context.Context, event domain.StorageEvent) {
	event.Origin = s.origin
	event.At = time.Now()
	if err := s.bus.Publish(ctx, event); err != nil {
		s.log.WithField("key", event.Key).Warnf("failed to announce storage change: %v", err)
	}
}

// Events delivers changes to key made by other tabs until ctx is done.
func (s *TabStorage) Events(ctx context.Context, key string) (<-chan domain.StorageEvent, error) {
	all, err := s.bus.Subscribe(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "subscribe to storage events")
	}

	out := make(chan domain.StorageEvent)
	go func() {
		defer close(out)
		for event := range all {
			if event.Key != key || event.Origin == s.origin {
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
