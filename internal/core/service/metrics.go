package service

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/rl1809/shop-cart/widget"

type widgetMetrics struct {
	added       metric.Int64Counter
	removed     metric.Int64Counter
	renders     metric.Int64Counter
	syncApplied metric.Int64Counter
}

func newWidgetMetrics() (*widgetMetrics, error) {
	meter := otel.GetMeterProvider().Meter(meterName)

	added, err := meter.Int64Counter("cart_items_added_total",
		metric.WithDescription("Products added to the cart"),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, err
	}

	removed, err := meter.Int64Counter("cart_items_removed_total",
		metric.WithDescription("Cart lines removed"),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, err
	}

	renders, err := meter.Int64Counter("cart_renders_total",
		metric.WithUnit("{renders}"))
	if err != nil {
		return nil, err
	}

	syncApplied, err := meter.Int64Counter("cart_sync_applied_total",
		metric.WithDescription("Carts replaced by changes from other tabs"),
		metric.WithUnit("{events}"))
	if err != nil {
		return nil, err
	}

	return &widgetMetrics{
		added:       added,
		removed:     removed,
		renders:     renders,
		syncApplied: syncApplied,
	}, nil
}
