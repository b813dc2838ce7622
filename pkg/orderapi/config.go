package orderapi

import "time"

// Config represents the configuration for the order API client
type Config struct {
	// BaseURL is the order API base URL, without a trailing slash
	BaseURL string

	// APIKey authenticates the storefront against the backend
	APIKey string

	// StoreID scopes created orders to one storefront
	StoreID string

	// Timeout bounds a single HTTP round trip
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	if c.APIKey == "" {
		return ErrInvalidConfig
	}
	return nil
}
