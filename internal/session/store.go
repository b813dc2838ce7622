// Package session keeps short-lived per-session state that must survive a page
// navigation, such as the checkout hand-off read by the confirmation page.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("session key not found")

// Store abstracts ephemeral key-value state.
// Implementations: Redis (production) or in-memory (local dev / single instance).
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

const (
	checkoutCartKey    = "cart"
	checkoutOrderKey   = "order"
	checkoutOrderIDKey = "order_id"
)

// CheckoutKeys lists the keys written for a session on checkout.
func CheckoutKeys(sessionID string) (cart, order, orderID string) {
	prefix := fmt.Sprintf("checkout:%s:", sessionID)
	return prefix + checkoutCartKey, prefix + checkoutOrderKey, prefix + checkoutOrderIDKey
}

// SetJSON stores v encoded as JSON.
func SetJSON(ctx context.Context, s Store, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}

// GetJSON decodes the value at key into v.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
