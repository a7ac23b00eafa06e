package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/shop-cart/internal/adapter/storage"
	"github.com/rl1809/shop-cart/internal/config"
	"github.com/rl1809/shop-cart/internal/core/domain"
)

func TestOpen_Memory(t *testing.T) {
	log, _ := test.NewNullLogger()

	b, err := Open(context.Background(), config.Default(), log)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 8, b.Catalog.Len())
	mem, ok := b.Area.(*storage.MemoryStorage)
	require.True(t, ok)
	assert.Same(t, mem, b.Bus)
}

func TestOpen_RedisWithYAMLCatalog(t *testing.T) {
	mr := miniredis.RunT(t)
	log, _ := test.NewNullLogger()

	path := filepath.Join(t.TempDir(), "products.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
products:
  - id: 10
    name: Caneca
    price: "25.00"
  - id: 11
    name: Camiseta
    price: "59.90"
    discount: "9.90"
`), 0o600))

	cfg := config.Default()
	cfg.Cart.Storage = config.StorageRedis
	cfg.Cart.Sync = config.SyncRedis
	cfg.Catalog.Source = config.CatalogYAML
	cfg.Catalog.File = path
	cfg.Redis.Addr = mr.Addr()

	b, err := Open(context.Background(), cfg, log)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 2, b.Catalog.Len())
	assert.IsType(t, &storage.RedisStorage{}, b.Area)
	assert.IsType(t, &storage.RedisBus{}, b.Bus)

	changed, err := b.Area.SetItem(context.Background(), "meuCarrinho", "[]")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestOpen_RedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	log, _ := test.NewNullLogger()
	cfg := config.Default()
	cfg.Cart.Storage = config.StorageRedis
	cfg.Redis.Addr = addr

	b, err := Open(context.Background(), cfg, log)
	assert.Error(t, err)
	assert.Nil(t, b)
}

func TestOpen_MissingYAMLCatalogClosesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	log, _ := test.NewNullLogger()

	cfg := config.Default()
	cfg.Cart.Storage = config.StorageRedis
	cfg.Catalog.Source = config.CatalogYAML
	cfg.Catalog.File = filepath.Join(t.TempDir(), "missing.yaml")
	cfg.Redis.Addr = mr.Addr()

	b := &Backends{log: log}
	err := b.open(context.Background(), cfg)
	require.Error(t, err)
	require.Len(t, b.closers, 1)

	b.Close()
	assert.Empty(t, b.closers)

	opened, err := Open(context.Background(), cfg, log)
	assert.Error(t, err)
	assert.Nil(t, opened)
}

func TestOpen_InvalidCatalog(t *testing.T) {
	log, _ := test.NewNullLogger()

	path := filepath.Join(t.TempDir(), "products.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
products:
  - id: 1
    name: Caneca
    price: "25.00"
  - id: 1
    name: Caneca de novo
    price: "30.00"
`), 0o600))

	cfg := config.Default()
	cfg.Catalog.Source = config.CatalogYAML
	cfg.Catalog.File = path

	b, err := Open(context.Background(), cfg, log)
	assert.True(t, errors.Is(err, domain.ErrInvalidCatalog), "got %v", err)
	assert.Nil(t, b)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", log.GetLevel().String())

	_, err = NewLogger("loud")
	assert.Error(t, err)
}
