package port

import (
	"context"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

type StorageArea interface {
	// GetItem returns the value stored under key, ok is false when the key is absent
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, changed is false when the stored value was already equal
	SetItem(ctx context.Context, key, value string) (changed bool, err error)

	// RemoveItem deletes key, removed is false when the key was absent
	RemoveItem(ctx context.Context, key string) (removed bool, err error)
}

type StorageBus interface {
	// Publish announces a storage change to every subscriber
	Publish(ctx context.Context, event domain.StorageEvent) error

	// Subscribe delivers events until ctx is done, then closes the channel
	Subscribe(ctx context.Context) (<-chan domain.StorageEvent, error)
}
