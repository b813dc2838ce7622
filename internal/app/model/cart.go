package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// ProductRef is the product data a line item references. Owned by the catalog.
type ProductRef struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Price  *float64 `json:"price"`
	Images []string `json:"images,omitempty"`
}

// VariantRef is the selected variant of a line item.
type VariantRef struct {
	ID    string   `json:"id"`
	Title string   `json:"title,omitempty"`
	Price *float64 `json:"price"`
	Image string   `json:"image,omitempty"`
}

// LineItemKey builds the identity of a (product, variant) pair.
func LineItemKey(productID string, variantID string) string {
	if variantID == "" {
		return productID
	}
	return productID + ":" + variantID
}

type LineItem struct {
	Key      string      `json:"key"`
	Product  ProductRef  `json:"product"`
	Variant  *VariantRef `json:"variant,omitempty"`
	Quantity int         `json:"quantity"`
}

// UnitPrice resolves the effective unit price: variant, then product, then zero.
func (li LineItem) UnitPrice() decimal.Decimal {
	if li.Variant != nil && isPrice(li.Variant.Price) {
		return decimal.NewFromFloat(*li.Variant.Price)
	}
	if isPrice(li.Product.Price) {
		return decimal.NewFromFloat(*li.Product.Price)
	}
	return decimal.Zero
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Title is the product title with the variant title as suffix.
func (li LineItem) Title() string {
	if li.Variant != nil && li.Variant.Title != "" {
		return li.Product.Title + " - " + li.Variant.Title
	}
	return li.Product.Title
}

// Image prefers the variant image over the first product image.
func (li LineItem) Image() string {
	if li.Variant != nil && li.Variant.Image != "" {
		return li.Variant.Image
	}
	if len(li.Product.Images) > 0 {
		return li.Product.Images[0]
	}
	return ""
}

func isPrice(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}

// TotalOf sums the line subtotals, rounded to cents.
func TotalOf(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total.Round(2)
}

// TotalItemsOf sums quantities, not lines.
func TotalItemsOf(items []LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// CartState is an immutable snapshot of a cart. Build it with NewCartState so the
// derived fields always match Items.
type CartState struct {
	Items      []LineItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	TotalItems int             `json:"total_items"`
	Version    uint64          `json:"version"`
}

// NewCartState deep-copies items and derives the totals from them.
func NewCartState(items []LineItem, version uint64) CartState {
	copied := make([]LineItem, len(items))
	for i, item := range items {
		copied[i] = item.clone()
	}
	return CartState{
		Items:      copied,
		Total:      TotalOf(copied),
		TotalItems: TotalItemsOf(copied),
		Version:    version,
	}
}

func (s CartState) IsEmpty() bool {
	return len(s.Items) == 0
}

func (li LineItem) clone() LineItem {
	out := li
	out.Product = li.Product.Clone()
	out.Variant = li.Variant.Clone()
	return out
}

// Clone returns a copy that shares no memory with p.
func (p ProductRef) Clone() ProductRef {
	out := p
	out.Images = append([]string(nil), p.Images...)
	out.Price = copyPrice(p.Price)
	return out
}

// Clone returns a copy of v, or nil for no variant.
func (v *VariantRef) Clone() *VariantRef {
	if v == nil {
		return nil
	}
	out := *v
	out.Price = copyPrice(v.Price)
	return &out
}
