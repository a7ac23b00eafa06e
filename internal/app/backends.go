package app

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-cart/internal/adapter/catalog"
	"github.com/rl1809/shop-cart/internal/adapter/storage"
	"github.com/rl1809/shop-cart/internal/config"
	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/port"
)

// Backends holds the catalog and the shared storage every tab in a process uses.
type Backends struct {
	Catalog *domain.Catalog
	Area    port.StorageArea
	Bus     port.StorageBus

	log     logrus.FieldLogger
	closers []func() error
}

// Open connects to whatever the config selects. On error everything opened so far is closed.
func Open(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*Backends, error) {
	b := &Backends{log: log}
	if err := b.open(ctx, cfg); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backends) open(ctx context.Context, cfg config.Config) error {
	log := b.log

	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			PoolSize: cfg.Redis.PoolSize,
		})
		b.closers = append(b.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return errors.Wrap(err, "connect redis")
		}
		log.Infof("connected to redis at %s", cfg.Redis.Addr)
	}

	repo, err := b.catalogSource(ctx, cfg)
	if err != nil {
		return err
	}
	if b.Catalog, err = LoadCatalog(ctx, repo); err != nil {
		return err
	}
	log.Infof("loaded %d products from %s catalog", b.Catalog.Len(), cfg.Catalog.Source)

	var mem *storage.MemoryStorage
	memory := func() *storage.MemoryStorage {
		if mem == nil {
			mem = storage.NewMemoryStorage(log)
		}
		return mem
	}

	switch cfg.Cart.Storage {
	case config.StorageRedis:
		b.Area = storage.NewRedisStorage(rdb, log)
	default:
		b.Area = memory()
	}

	switch cfg.Cart.Sync {
	case config.SyncRedis:
		b.Bus = storage.NewRedisBus(rdb, cfg.Redis.Channel, log)
	case config.SyncAMQP:
		conn, err := amqp.Dial(cfg.AMQP.URL)
		if err != nil {
			return errors.Wrap(err, "connect amqp")
		}
		b.closers = append(b.closers, conn.Close)
		bus, err := storage.NewAMQPBus(conn, cfg.AMQP.Exchange, log)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, bus.Close)
		b.Bus = bus
		log.Info("connected to amqp")
	default:
		b.Bus = memory()
	}

	return nil
}

func (b *Backends) catalogSource(ctx context.Context, cfg config.Config) (port.CatalogRepository, error) {
	switch cfg.Catalog.Source {
	case config.CatalogYAML:
		return catalog.NewYAMLFile(cfg.Catalog.File), nil
	case config.CatalogMySQL:
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "open mysql")
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		b.closers = append(b.closers, db.Close)

		if err := db.PingContext(ctx); err != nil {
			return nil, errors.Wrap(err, "ping mysql")
		}
		b.log.Info("connected to mysql")

		repo := storage.NewMySQLCatalog(db)
		if err := seedMySQLCatalog(ctx, repo, b.log); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return catalog.NewStatic(catalog.Builtin()), nil
	}
}

// seedMySQLCatalog creates the products table and fills it with the built-in set when empty.
func seedMySQLCatalog(ctx context.Context, repo *storage.MySQLCatalog, log logrus.FieldLogger) error {
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	products, err := repo.ListProducts(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	if len(products) > 0 {
		return nil
	}

	if err := repo.ReplaceProducts(ctx, catalog.Builtin()); err != nil {
		return errors.Wrap(err, "seed products")
	}
	log.Info("seeded empty products table with the built-in catalog")
	return nil
}

// LoadCatalog reads and validates the products a catalog source serves.
func LoadCatalog(ctx context.Context, repo port.CatalogRepository) (*domain.Catalog, error) {
	products, err := repo.ListProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return domain.NewCatalog(products)
}

// Close releases connections in reverse order of opening.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			b.log.Warnf("failed to close backend: %v", err)
		}
	}
	b.closers = nil
}
