package handler

import "github.com/rl1809/shop-cart/internal/core/domain"

type ProductResponse struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Discount   string `json:"discount,omitempty"`
	FinalPrice string `json:"final_price"`
	Image      string `json:"image"`
}

type CartItemResponse struct {
	Index     int    `json:"index"`
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
	Discount  string `json:"discount"`
}

type CartResponse struct {
	Items    []CartItemResponse `json:"items"`
	Count    int                `json:"count"`
	Gross    string             `json:"gross"`
	Discount string             `json:"discount"`
	Total    string             `json:"total"`
	Visible  bool               `json:"visible"`
}

type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

func toProductResponses(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		r := ProductResponse{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price.StringFixed(2),
			FinalPrice: p.FinalPrice().StringFixed(2),
			Image:      p.Image,
		}
		if p.HasDiscount() {
			r.Discount = p.Discount.StringFixed(2)
		}
		out = append(out, r)
	}
	return out
}

func toCartResponse(snapshot domain.CartSnapshot) *CartResponse {
	items := make([]CartItemResponse, 0, len(snapshot.Items))
	for i, item := range snapshot.Items {
		items = append(items, CartItemResponse{
			Index:     i,
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price.StringFixed(2),
			Subtotal:  item.Subtotal().StringFixed(2),
			Discount:  item.DiscountTotal().StringFixed(2),
		})
	}

	return &CartResponse{
		Items:    items,
		Count:    snapshot.Totals.Count,
		Gross:    snapshot.Totals.Gross.StringFixed(2),
		Discount: snapshot.Totals.Discount.StringFixed(2),
		Total:    snapshot.Totals.Total.StringFixed(2),
		Visible:  snapshot.Visible,
	}
}
