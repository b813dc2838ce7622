package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the order returned by the order-creation API. It is not persisted here.
type Order struct {
	OrderID      string      `json:"order_id"`
	Status       OrderStatus `json:"status"`
	CurrencyCode string      `json:"currency_code"`
	Items        []OrderItem `json:"items"`
	Total        float64     `json:"total"`
	CreatedAt    time.Time   `json:"created_at"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	VariantID string  `json:"variant_id,omitempty"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// CheckoutSnapshot is the cart as it was when checkout started.
type CheckoutSnapshot struct {
	Items      []LineItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	CapturedAt time.Time       `json:"captured_at"`
}

func NewCheckoutSnapshot(state CartState, at time.Time) CheckoutSnapshot {
	return CheckoutSnapshot{
		Items:      state.Items,
		Total:      state.Total,
		CapturedAt: at,
	}
}

// Confirmation is what the order-confirmation page reads back after checkout.
type Confirmation struct {
	OrderID  string           `json:"order_id"`
	Order    Order            `json:"order"`
	Snapshot CheckoutSnapshot `json:"cart"`
}

// View renders the snapshot the way carts are sent to clients.
func (s CheckoutSnapshot) View() CartView {
	return NewCartView(CartState{
		Items:      s.Items,
		Total:      s.Total,
		TotalItems: TotalItemsOf(s.Items),
	})
}
