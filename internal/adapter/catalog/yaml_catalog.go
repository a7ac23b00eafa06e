package catalog

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

type yamlFile struct {
	Products []yamlProduct `yaml:"products"`
}

type yamlProduct struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Discount string `yaml:"discount"`
	Image    string `yaml:"image"`
}

// YAMLFile reads the catalog from a YAML document on every call.
type YAMLFile struct {
	path string
}

func NewYAMLFile(path string) *YAMLFile {
	return &YAMLFile{path: path}
}

func (f *YAMLFile) ListProducts(ctx context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", f.path)
	}
	products, err := ParseYAML(data)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", f.path)
	}
	return products, nil
}

func ParseYAML(data []byte) ([]domain.Product, error) {
	var doc yamlFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse yaml")
	}

	products := make([]domain.Product, 0, len(doc.Products))
	for _, yp := range doc.Products {
		price, err := decimal.NewFromString(yp.Price)
		if err != nil {
			return nil, errors.Wrapf(err, "product %d: price", yp.ID)
		}
		discount := decimal.Zero
		if yp.Discount != "" {
			if discount, err = decimal.NewFromString(yp.Discount); err != nil {
				return nil, errors.Wrapf(err, "product %d: discount", yp.ID)
			}
		}
		image := yp.Image
		if image == "" {
			image = placeholderImage
		}

		products = append(products, domain.Product{
			ID:       yp.ID,
			Name:     yp.Name,
			Price:    price,
			Discount: discount,
			Image:    image,
		})
	}
	return products, nil
}
