package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

const (
	DefaultEventChannel = "cart:storage-events"
	subscriberBuffer    = 64
)

// RedisBus carries storage events over Redis pub/sub.
type RedisBus struct {
	client  *redis.Client
	channel string
	log     logrus.FieldLogger
}

func NewRedisBus(client *redis.Client, channel string, log logrus.FieldLogger) *RedisBus {
	if channel == "" {
		channel = DefaultEventChannel
	}
	return &RedisBus{client: client, channel: channel, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, event domain.StorageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal storage event")
	}
	return b.client.Publish(ctx, b.channel, data).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan domain.StorageEvent, error) {
	ps := b.client.Subscribe(ctx, b.channel)
	// wait for the subscription to be confirmed so no event published after return is missed
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, errors.Wrapf(err, "subscribe %s", b.channel)
	}

	out := make(chan domain.StorageEvent, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var event domain.StorageEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.log.Warnf("dropping malformed storage event on %s: %v", b.channel, err)
					continue
				}

				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
