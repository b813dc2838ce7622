package errors

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ikkim/storefront-backend/pkg/orderapi"
	"gorm.io/gorm"
)

// ErrorInfo carries the code, message and status an error maps to
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError maps infrastructure errors to a client-safe response.
// Details of the underlying failure are never exposed.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalServerError,
			Message: defaultMessage(context),
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	switch {
	case errors.Is(err, orderapi.ErrInvalidRequest):
		return ErrorInfo{
			Status:  http.StatusUnprocessableEntity,
			Code:    CheckoutOrderRejected,
			Message: "The order could not be created. Please review your cart",
		}
	case errors.Is(err, orderapi.ErrOrderRejected):
		return ErrorInfo{
			Status:  http.StatusBadGateway,
			Code:    CheckoutOrderRejected,
			Message: "The order could not be created. Please try again",
		}
	case errors.Is(err, orderapi.ErrNetworkError), errors.Is(err, orderapi.ErrUnauthorized):
		return ErrorInfo{
			Status:  http.StatusBadGateway,
			Code:    CheckoutOrderUnavailable,
			Message: "The order service is unavailable. Please try again shortly",
		}
	case isTimeout(err):
		return ErrorInfo{
			Status:  http.StatusGatewayTimeout,
			Code:    InternalExternalAPI,
			Message: "An external service did not respond in time. Please try again",
		}
	}

	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "sql") || strings.Contains(errLower, "database") {
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalDatabaseError,
			Message: defaultMessage(context),
		}
	}

	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: defaultMessage(context),
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	errLower := strings.ToLower(err.Error())
	return strings.Contains(errLower, "timeout") || strings.Contains(errLower, "connection refused")
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "variant"):
		return "Variant not found"
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "checkout"):
		return "No checkout found for this session"
	}
	return "The requested resource was not found"
}

func defaultMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "checkout"):
		return "Checkout failed. Your cart was kept, please try again"
	case strings.Contains(contextLower, "cart"):
		return "The cart could not be updated. Please try again"
	}
	return "Something went wrong. Please try again later"
}

// ParseAndRespond parses err and writes the matching response
func ParseAndRespond(c interface{ JSON(int, interface{}) }, err error, context string) {
	info := ParseError(err, context)
	c.JSON(info.Status, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
