package domain

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultStorageKey is the storage key the cart lives under.
const DefaultStorageKey = "meuCarrinho"

// wireItem mirrors the stored JSON layout: product fields plus "qtd".
type wireItem struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Price     json.Number  `json:"price"`
	Discounts *json.Number `json:"discounts,omitempty"`
	Image     string       `json:"image"`
	Qty       int          `json:"qtd"`
}

func EncodeCart(items []CartItem) (string, error) {
	wire := make([]wireItem, 0, len(items))
	for _, item := range items {
		w := wireItem{
			ID:    item.ID,
			Name:  item.Name,
			Price: json.Number(item.Price.String()),
			Image: item.Image,
			Qty:   item.Quantity,
		}
		if item.HasDiscount() {
			d := json.Number(item.Discount.String())
			w.Discounts = &d
		}
		wire = append(wire, w)
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return "", errors.Wrap(err, "encode cart")
	}
	return string(data), nil
}

// DecodeCart parses a stored cart. It does not check items against a catalog.
func DecodeCart(value string) ([]CartItem, error) {
	var wire []wireItem
	if err := json.Unmarshal([]byte(value), &wire); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}

	items := make([]CartItem, 0, len(wire))
	for _, w := range wire {
		price, err := decodeAmount(w.Price)
		if err != nil {
			return nil, errors.Wrapf(err, "decode cart: price of item %d", w.ID)
		}
		discount := decimal.Zero
		if w.Discounts != nil {
			discount, err = decodeAmount(*w.Discounts)
			if err != nil {
				return nil, errors.Wrapf(err, "decode cart: discount of item %d", w.ID)
			}
		}
		items = append(items, CartItem{
			Product: Product{
				ID:       w.ID,
				Name:     w.Name,
				Price:    price,
				Discount: discount,
				Image:    w.Image,
			},
			Quantity: w.Qty,
		})
	}
	return items, nil
}

func decodeAmount(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}
