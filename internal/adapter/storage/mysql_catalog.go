package storage

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

const productsSchema = `
CREATE TABLE IF NOT EXISTS products (
	id       INT PRIMARY KEY,
	name     VARCHAR(255) NOT NULL,
	price    DECIMAL(10, 2) NOT NULL,
	discount DECIMAL(10, 2) NULL,
	image    VARCHAR(1024) NULL
)`

// MySQLCatalog reads the product catalog from the products table.
type MySQLCatalog struct {
	db *sql.DB
	sf singleflight.Group
}

func NewMySQLCatalog(db *sql.DB) *MySQLCatalog {
	return &MySQLCatalog{db: db}
}

func (m *MySQLCatalog) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, productsSchema); err != nil {
		return errors.Wrap(err, "create products table")
	}
	return nil
}

func (m *MySQLCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := m.sf.Do("products", func() (interface{}, error) {
		return m.queryProducts(ctx)
	})
	if err != nil {
		return nil, err
	}

	products := v.([]domain.Product)
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out, nil
}

func (m *MySQLCatalog) queryProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, price, discount, image
		FROM products ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p        domain.Product
			discount decimal.NullDecimal
			image    sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &discount, &image); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		p.Discount = decimal.Zero
		if discount.Valid {
			p.Discount = discount.Decimal
		}
		p.Image = image.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}

	return products, nil
}

// ReplaceProducts swaps the whole catalog in one transaction.
func (m *MySQLCatalog) ReplaceProducts(ctx context.Context, products []domain.Product) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return errors.Wrap(err, "clear products")
	}

	for _, p := range products {
		var discount interface{}
		if p.HasDiscount() {
			discount = p.Discount.String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, price, discount, image)
			VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Price.String(), discount, p.Image,
		)
		if err != nil {
			return errors.Wrapf(err, "insert product %d", p.ID)
		}
	}

	return tx.Commit()
}
