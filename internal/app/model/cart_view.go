package model

// CartView is the JSON shape of a cart sent to clients. Money is rendered as
// numbers rounded to cents.
type CartView struct {
	Items      []LineItemView `json:"items"`
	Total      float64        `json:"total"`
	TotalItems int            `json:"total_items"`
	Count      int            `json:"count"`
	Version    uint64         `json:"version"`
}

type LineItemView struct {
	Key       string  `json:"key"`
	ProductID string  `json:"product_id"`
	VariantID string  `json:"variant_id,omitempty"`
	Title     string  `json:"title"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

func NewCartView(state CartState) CartView {
	items := make([]LineItemView, len(state.Items))
	for i, item := range state.Items {
		var variantID string
		if item.Variant != nil {
			variantID = item.Variant.ID
		}
		items[i] = LineItemView{
			Key:       item.Key,
			ProductID: item.Product.ID,
			VariantID: variantID,
			Title:     item.Title(),
			Image:     item.Image(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice().Round(2).InexactFloat64(),
			Subtotal:  item.Subtotal().Round(2).InexactFloat64(),
		}
	}
	return CartView{
		Items:      items,
		Total:      state.Total.InexactFloat64(),
		TotalItems: state.TotalItems,
		Count:      len(items),
		Version:    state.Version,
	}
}
