package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

const DefaultEventExchange = "cart.storage-events"

// AMQPBus fans storage events out through a RabbitMQ fanout exchange.
// Every subscriber gets its own exclusive, auto-deleted queue.
type AMQPBus struct {
	conn     *amqp.Connection
	exchange string
	log      logrus.FieldLogger

	mu    sync.Mutex
	pubCh *amqp.Channel
}

func NewAMQPBus(conn *amqp.Connection, exchange string, log logrus.FieldLogger) (*AMQPBus, error) {
	if exchange == "" {
		exchange = DefaultEventExchange
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "open publish channel")
	}

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeFanout,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, errors.Wrapf(err, "declare exchange %s", exchange)
	}

	return &AMQPBus{conn: conn, exchange: exchange, log: log, pubCh: ch}, nil
}

func (b *AMQPBus) Publish(ctx context.Context, event domain.StorageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal storage event")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	err = b.pubCh.PublishWithContext(ctx, b.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   event.At,
		Body:        data,
	})
	if err != nil {
		return errors.Wrapf(err, "publish to %s", b.exchange)
	}
	return nil
}

func (b *AMQPBus) Subscribe(ctx context.Context) (<-chan domain.StorageEvent, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "open consume channel")
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, errors.Wrap(err, "declare subscriber queue")
	}

	if err := ch.QueueBind(q.Name, "", b.exchange, false, nil); err != nil {
		ch.Close()
		return nil, errors.Wrapf(err, "bind %s to %s", q.Name, b.exchange)
	}

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, errors.Wrapf(err, "consume %s", q.Name)
	}

	out := make(chan domain.StorageEvent, subscriberBuffer)
	go func() {
		defer close(out)
		defer ch.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event domain.StorageEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					b.log.Warnf("dropping malformed storage event from %s: %v", b.exchange, err)
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

func (b *AMQPBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pubCh.Close()
}
