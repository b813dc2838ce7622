package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ikkim/storefront-backend/pkg/logger"
)

const (
	defaultTimeout = 30 * time.Second

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// Client talks to the hosted backend's order-creation endpoint
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new order API client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// CreateOrder submits the cart snapshot and returns the created order
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidRequest)
	}
	if req.StoreID == "" {
		req.StoreID = c.config.StoreID
	}

	body, err := c.doRequest(ctx, http.MethodPost, "orders", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order response: %w", err)
	}
	if order.OrderID == "" {
		return nil, fmt.Errorf("%w: response without order_id", ErrOrderRejected)
	}

	return &order, nil
}

// doRequest performs an HTTP request against the order API
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.config.BaseURL, endpoint)

	logger.Debug("Order API request", map[string]interface{}{
		"method":     method,
		"url":        url,
		"body_bytes": len(reqBody),
	})

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		logger.Warn("Order API response too large", map[string]interface{}{
			"url":         url,
			"status_code": resp.StatusCode,
		})
		return nil, fmt.Errorf("%w: response body exceeds %d bytes", ErrOrderRejected, maxResponseBytes)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		errResp.Message = string(body)
	}
	errorMsg := fmt.Sprintf("status %d, code %q, message %q", resp.StatusCode, errResp.Code, errResp.Message)

	logger.Warn("Order API returned an error", map[string]interface{}{
		"url":         url,
		"status_code": resp.StatusCode,
		"code":        errResp.Code,
	})

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errorMsg)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, errorMsg)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s", ErrNetworkError, errorMsg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrOrderRejected, errorMsg)
	}
}
