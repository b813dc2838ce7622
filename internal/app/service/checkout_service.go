package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/orderapi"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrCheckoutInProgress   = errors.New("checkout already in progress")
	ErrOrderCreationFailed  = errors.New("order creation failed")
	ErrConfirmationNotFound = errors.New("checkout confirmation not found")
)

// OrderCreator creates an order on the hosted backend.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req orderapi.CreateOrderRequest) (*orderapi.Order, error)
}

type CheckoutConfig struct {
	DefaultCurrencyCode string
	Timeout             time.Duration
	SnapshotTTL         time.Duration
}

type CheckoutResult struct {
	Order         model.Order            `json:"order"`
	Snapshot      model.CheckoutSnapshot `json:"cart"`
	SnapshotSaved bool                   `json:"snapshot_saved"`
}

type CheckoutService interface {
	// Checkout turns the session's cart into an order. The ordered lines leave the
	// cart only when the order was created.
	Checkout(ctx context.Context, sessionID, currencyCode string) (*CheckoutResult, error)
	GetConfirmation(ctx context.Context, sessionID string) (*model.Confirmation, error)
}

type checkoutService struct {
	carts    *cart.Registry
	orders   OrderCreator
	sessions session.Store
	metrics  *metrics.Metrics
	config   CheckoutConfig
	now      func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCheckoutService(
	carts *cart.Registry,
	orders OrderCreator,
	sessions session.Store,
	m *metrics.Metrics,
	config CheckoutConfig,
) CheckoutService {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.SnapshotTTL <= 0 {
		config.SnapshotTTL = time.Hour
	}
	return &checkoutService{
		carts:    carts,
		orders:   orders,
		sessions: sessions,
		metrics:  m,
		config:   config,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
}

func (s *checkoutService) Checkout(ctx context.Context, sessionID, currencyCode string) (*CheckoutResult, error) {
	if !s.acquire(sessionID) {
		logger.Warn("Checkout already in progress", map[string]interface{}{
			"session_id": sessionID,
		})
		s.metrics.Checkout("in_progress")
		return nil, ErrCheckoutInProgress
	}
	defer s.release(sessionID)

	state := s.carts.Get(sessionID).State()
	if state.IsEmpty() {
		s.metrics.Checkout("empty")
		return nil, ErrEmptyCart
	}
	snapshot := model.NewCheckoutSnapshot(state, s.now())

	currencyCode = strings.ToUpper(strings.TrimSpace(currencyCode))
	if currencyCode == "" {
		currencyCode = s.config.DefaultCurrencyCode
	}

	logger.Info("Starting checkout", map[string]interface{}{
		"session_id":    sessionID,
		"items":         len(snapshot.Items),
		"total":         snapshot.Total.String(),
		"currency_code": currencyCode,
	})

	// The order call outlives a cancelled request; only the timeout bounds it.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Timeout)
	defer cancel()

	created, err := s.orders.CreateOrder(callCtx, buildOrderRequest(snapshot, currencyCode))
	if err != nil {
		logger.Error("Order creation failed, cart kept", err, map[string]interface{}{
			"session_id": sessionID,
			"items":      len(snapshot.Items),
		})
		s.metrics.Checkout("failed")
		return nil, fmt.Errorf("%w: %w", ErrOrderCreationFailed, err)
	}

	order := toModelOrder(created)
	saved := s.saveConfirmation(ctx, sessionID, order, snapshot)
	// Lines added while the order call was pending were not ordered and stay.
	remaining := s.carts.Get(sessionID).RemoveOrdered(snapshot.Items)
	s.metrics.Checkout("success")

	logger.Info("Checkout completed", map[string]interface{}{
		"session_id":      sessionID,
		"order_id":        order.OrderID,
		"snapshot_saved":  saved,
		"remaining_items": remaining.TotalItems,
	})

	return &CheckoutResult{
		Order:         order,
		Snapshot:      snapshot,
		SnapshotSaved: saved,
	}, nil
}

func (s *checkoutService) GetConfirmation(ctx context.Context, sessionID string) (*model.Confirmation, error) {
	cartKey, orderKey, orderIDKey := session.CheckoutKeys(sessionID)

	var confirmation model.Confirmation
	if err := session.GetJSON(ctx, s.sessions, orderIDKey, &confirmation.OrderID); err != nil {
		return nil, confirmationError(err)
	}
	if err := session.GetJSON(ctx, s.sessions, orderKey, &confirmation.Order); err != nil {
		return nil, confirmationError(err)
	}
	if err := session.GetJSON(ctx, s.sessions, cartKey, &confirmation.Snapshot); err != nil {
		return nil, confirmationError(err)
	}
	return &confirmation, nil
}

// saveConfirmation writes the three checkout keys. A failure is logged and reported
// to the caller but does not undo the order.
func (s *checkoutService) saveConfirmation(ctx context.Context, sessionID string, order model.Order, snapshot model.CheckoutSnapshot) bool {
	ctx = context.WithoutCancel(ctx)
	cartKey, orderKey, orderIDKey := session.CheckoutKeys(sessionID)
	ttl := s.config.SnapshotTTL

	writes := []struct {
		key   string
		value interface{}
	}{
		{cartKey, snapshot},
		{orderKey, order},
		{orderIDKey, order.OrderID},
	}
	for _, w := range writes {
		if err := session.SetJSON(ctx, s.sessions, w.key, w.value, ttl); err != nil {
			logger.Error("Failed to store checkout confirmation", err, map[string]interface{}{
				"session_id": sessionID,
				"order_id":   order.OrderID,
				"key":        w.key,
			})
			return false
		}
	}
	return true
}

func (s *checkoutService) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *checkoutService) release(sessionID string) {
	s.mu.Lock()
	delete(s.inFlight, sessionID)
	s.mu.Unlock()
}

func confirmationError(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return ErrConfirmationNotFound
	}
	return fmt.Errorf("failed to read checkout confirmation: %w", err)
}

func buildOrderRequest(snapshot model.CheckoutSnapshot, currencyCode string) orderapi.CreateOrderRequest {
	items := make([]orderapi.OrderItem, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		var variantID string
		if item.Variant != nil {
			variantID = item.Variant.ID
		}
		items = append(items, orderapi.OrderItem{
			ProductID: item.Product.ID,
			VariantID: variantID,
			Title:     item.Title(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice().InexactFloat64(),
		})
	}
	return orderapi.CreateOrderRequest{
		CurrencyCode: currencyCode,
		Items:        items,
	}
}

func toModelOrder(o *orderapi.Order) model.Order {
	items := make([]model.OrderItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = model.OrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	status := model.OrderStatus(o.Status)
	if status == "" {
		status = model.OrderStatusPending
	}
	return model.Order{
		OrderID:      o.OrderID,
		Status:       status,
		CurrencyCode: o.CurrencyCode,
		Items:        items,
		Total:        o.Total,
		CreatedAt:    o.CreatedAt,
	}
}
