package handler

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/shop-cart/internal/adapter/catalog"
	"github.com/rl1809/shop-cart/internal/adapter/storage"
	"github.com/rl1809/shop-cart/internal/adapter/view"
	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/core/service"
)

type testTab struct {
	widget *service.Widget
	view   *view.HTMLView
	shared *storage.MemoryStorage
	log    logrus.FieldLogger
}

func newTestTab(t *testing.T) *testTab {
	t.Helper()

	log, _ := test.NewNullLogger()
	cat, err := domain.NewCatalog(catalog.Builtin())
	require.NoError(t, err)

	shared := storage.NewMemoryStorage(log)
	ts := service.NewTabStorage(shared, shared, log)
	store := service.NewCartStore(cat, ts, "", log)
	v, err := view.NewHTMLView("")
	require.NoError(t, err)

	w, err := service.NewWidget(cat, store, ts, v, log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx))

	return &testTab{widget: w, view: v, shared: shared, log: log}
}
