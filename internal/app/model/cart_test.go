package model

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineItem_UnitPrice(t *testing.T) {
	tests := []struct {
		name    string
		product *float64
		variant *VariantRef
		want    string
	}{
		{name: "Variant price wins", product: PriceOf(10), variant: &VariantRef{ID: "v", Price: PriceOf(12.5)}, want: "12.5"},
		{name: "Variant without price falls back to product", product: PriceOf(10), variant: &VariantRef{ID: "v"}, want: "10"},
		{name: "No variant", product: PriceOf(7.25), want: "7.25"},
		{name: "No price at all", want: "0"},
		{name: "NaN is treated as missing", product: PriceOf(math.NaN()), want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := LineItem{
				Product:  ProductRef{ID: "p", Price: tt.product},
				Variant:  tt.variant,
				Quantity: 1,
			}
			assert.True(t, item.UnitPrice().Equal(decimal.RequireFromString(tt.want)), "got %s", item.UnitPrice())
		})
	}
}

func TestLineItem_TitleAndImage(t *testing.T) {
	item := LineItem{
		Product: ProductRef{ID: "p", Title: "Amaro", Images: []string{"a.jpg", "b.jpg"}},
	}
	assert.Equal(t, "Amaro", item.Title())
	assert.Equal(t, "a.jpg", item.Image())

	item.Variant = &VariantRef{ID: "v", Title: "Large", Image: "large.jpg"}
	assert.Equal(t, "Amaro - Large", item.Title())
	assert.Equal(t, "large.jpg", item.Image())

	assert.Equal(t, "", LineItem{}.Image())
}

func TestTotalOf(t *testing.T) {
	items := []LineItem{
		{Product: ProductRef{ID: "a", Price: PriceOf(10)}, Quantity: 2},
		{Product: ProductRef{ID: "b", Price: PriceOf(20)}, Quantity: 1},
		{Product: ProductRef{ID: "c", Price: PriceOf(0.1)}, Quantity: 3},
	}
	assert.Equal(t, "40.3", TotalOf(items).String())
	assert.Equal(t, 6, TotalItemsOf(items))
	assert.True(t, TotalOf(nil).IsZero())
}

func TestLineItemKey(t *testing.T) {
	assert.Equal(t, "p1", LineItemKey("p1", ""))
	assert.Equal(t, "p1:v1", LineItemKey("p1", "v1"))
}

func TestNewCartState_DeepCopies(t *testing.T) {
	items := []LineItem{{
		Key:      "p:v",
		Product:  ProductRef{ID: "p", Price: PriceOf(5), Images: []string{"p.jpg"}},
		Variant:  &VariantRef{ID: "v", Price: PriceOf(6)},
		Quantity: 2,
	}}

	state := NewCartState(items, 3)
	assert.Equal(t, "12", state.Total.String())
	assert.Equal(t, 2, state.TotalItems)
	assert.Equal(t, uint64(3), state.Version)

	items[0].Quantity = 100
	*items[0].Variant.Price = 99
	items[0].Product.Images[0] = "changed.jpg"

	assert.Equal(t, 2, state.Items[0].Quantity)
	assert.Equal(t, 6.0, *state.Items[0].Variant.Price)
	assert.Equal(t, "p.jpg", state.Items[0].Product.Images[0])
	assert.False(t, state.IsEmpty())
	assert.True(t, NewCartState(nil, 0).IsEmpty())
}

func TestNewCartView(t *testing.T) {
	state := NewCartState([]LineItem{
		{
			Key:      "p:v",
			Product:  ProductRef{ID: "p", Title: "Amaro", Price: PriceOf(10), Images: []string{"p.jpg"}},
			Variant:  &VariantRef{ID: "v", Title: "Large", Price: PriceOf(12.5)},
			Quantity: 2,
		},
		{
			Key:      "q",
			Product:  ProductRef{ID: "q", Title: "Bitters", Price: PriceOf(15)},
			Quantity: 1,
		},
	}, 7)

	view := NewCartView(state)
	assert.Equal(t, 40.0, view.Total)
	assert.Equal(t, 3, view.TotalItems)
	assert.Equal(t, 2, view.Count)
	assert.Equal(t, uint64(7), view.Version)

	assert.Equal(t, LineItemView{
		Key:       "p:v",
		ProductID: "p",
		VariantID: "v",
		Title:     "Amaro - Large",
		Image:     "p.jpg",
		Quantity:  2,
		UnitPrice: 12.5,
		Subtotal:  25,
	}, view.Items[0])
	assert.Empty(t, view.Items[1].VariantID)
}
