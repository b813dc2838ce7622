package orderapi

import "errors"

var (
	// ErrInvalidConfig is returned by NewClient for an incomplete configuration
	ErrInvalidConfig = errors.New("invalid order api config")

	// ErrInvalidRequest is returned when the backend rejects the order payload
	ErrInvalidRequest = errors.New("invalid order request")

	// ErrUnauthorized is returned when the API key is rejected
	ErrUnauthorized = errors.New("unauthorized: invalid API key")

	// ErrOrderRejected is returned for any other non-success response
	ErrOrderRejected = errors.New("order rejected")

	// ErrNetworkError is returned when the backend could not be reached
	ErrNetworkError = errors.New("network error")
)
