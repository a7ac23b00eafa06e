package view

import (
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

// LogView is a headless view: every render becomes a log entry.
type LogView struct {
	log logrus.FieldLogger
}

func NewLogView(log logrus.FieldLogger) *LogView {
	return &LogView{log: log}
}

func (v *LogView) RenderCatalog(products []domain.Product) error {
	v.log.WithField("products", len(products)).Debug("catalog rendered")
	return nil
}

func (v *LogView) RenderCart(snapshot domain.CartSnapshot) error {
	v.log.WithFields(logrus.Fields{
		"lines":    len(snapshot.Items),
		"count":    snapshot.Totals.Count,
		"discount": snapshot.Totals.Discount.StringFixed(2),
		"total":    snapshot.Totals.Total.StringFixed(2),
		"visible":  snapshot.Visible,
	}).Info("cart rendered")
	return nil
}
