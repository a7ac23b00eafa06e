package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/port"
)

// StorageEvents is the source of changes made by other tabs.
type StorageEvents interface {
	Events(ctx context.Context, key string) (<-chan domain.StorageEvent, error)
}

// Widget drives one tab: mutate the store, redraw the view, persist.
type Widget struct {
	catalog *domain.Catalog
	store   *CartStore
	events  StorageEvents
	view    port.View
	log     logrus.FieldLogger
	metrics *widgetMetrics

	// renderMu keeps view updates and the persist that follows them in order
	renderMu sync.Mutex

	syncOnce sync.Once
	incoming <-chan domain.StorageEvent
}

func NewWidget(catalog *domain.Catalog, store *CartStore, events StorageEvents, view port.View, log logrus.FieldLogger) (*Widget, error) {
	metrics, err := newWidgetMetrics()
	if err != nil {
		return nil, errors.Wrap(err, "register widget metrics")
	}

	return &Widget{
		catalog: catalog,
		store:   store,
		events:  events,
		view:    view,
		log:     log,
		metrics: metrics,
	}, nil
}

// Start subscribes to other tabs' changes, draws the catalog and draws the stored cart.
// Sync must run afterwards to apply the changes.
func (w *Widget) Start(ctx context.Context) error {
	incoming, err := w.events.Events(ctx, w.store.Key())
	if err != nil {
		return err
	}
	w.incoming = incoming

	if err := w.RenderCatalog(); err != nil {
		return err
	}

	w.store.Load(ctx)

	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	if err := w.drawCart(ctx); err != nil {
		return err
	}
	// A failed first write is retried by the next render.
	if err := w.persist(ctx); err != nil {
		w.log.Warn("started with a cart that is not saved yet")
	}
	return nil
}

func (w *Widget) RenderCatalog() error {
	if err := w.view.RenderCatalog(w.catalog.Products()); err != nil {
		return errors.Wrap(err, "render catalog")
	}
	return nil
}

// Render redraws the cart from current contents and then persists it.
func (w *Widget) Render(ctx context.Context) error {
	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	if err := w.drawCart(ctx); err != nil {
		return err
	}
	return w.persist(ctx)
}

func (w *Widget) drawCart(ctx context.Context) error {
	if err := w.view.RenderCart(w.store.Snapshot()); err != nil {
		return errors.Wrap(err, "render cart")
	}
	w.metrics.renders.Add(ctx, 1)
	return nil
}

func (w *Widget) persist(ctx context.Context) error {
	if err := w.store.Persist(ctx); err != nil {
		w.log.Errorf("failed to persist cart: %v", err)
		return err
	}
	return nil
}

func (w *Widget) Add(ctx context.Context, productID int) (domain.CartSnapshot, error) {
	item, err := w.store.Add(productID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	w.metrics.added.Add(ctx, 1, metric.WithAttributes(attribute.Int("product_id", productID)))
	w.log.WithField("product_id", productID).Debugf("added to cart, quantity now %d", item.Quantity)

	if err := w.Render(ctx); err != nil {
		return domain.CartSnapshot{}, err
	}
	return w.store.Snapshot(), nil
}

func (w *Widget) Remove(ctx context.Context, index int) (domain.CartSnapshot, error) {
	item, err := w.store.Remove(index)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	w.metrics.removed.Add(ctx, 1, metric.WithAttributes(attribute.Int("product_id", item.ID)))
	w.log.WithFields(logrus.Fields{"index": index, "product_id": item.ID}).Debug("removed from cart")

	if err := w.Render(ctx); err != nil {
		return domain.CartSnapshot{}, err
	}
	return w.store.Snapshot(), nil
}

func (w *Widget) Snapshot() domain.CartSnapshot {
	return w.store.Snapshot()
}

func (w *Widget) Products() []domain.Product {
	return w.catalog.Products()
}

// Sync applies changes from other tabs until ctx is done. It returns nil on shutdown.
func (w *Widget) Sync(ctx context.Context) error {
	if w.incoming == nil {
		return errors.New("widget not started")
	}

	started := false
	w.syncOnce.Do(func() { started = true })
	if !started {
		return errors.New("sync already running")
	}

	for event := range w.incoming {
		if event.Removed {
			w.store.Replace(nil)
		} else {
			w.store.ReplaceEncoded(event.NewValue)
		}
		w.metrics.syncApplied.Add(ctx, 1)
		w.log.WithField("from", event.Origin).Debug("applied cart change from another tab")

		if err := w.Render(ctx); err != nil {
			w.log.Warnf("failed to render synced cart: %v", err)
		}
	}

	return nil
}
