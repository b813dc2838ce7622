package orderapi

import "time"

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	StoreID      string      `json:"store_id,omitempty"`
	CurrencyCode string      `json:"currency_code"`
	Items        []OrderItem `json:"items"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	VariantID string  `json:"variant_id,omitempty"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Order is the created order as echoed by the backend
type Order struct {
	OrderID      string      `json:"order_id"`
	Status       string      `json:"status"`
	CurrencyCode string      `json:"currency_code"`
	Items        []OrderItem `json:"items"`
	Total        float64     `json:"total"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ErrorResponse is the error body returned by the backend
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
