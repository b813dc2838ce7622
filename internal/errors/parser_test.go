package errors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/pkg/orderapi"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		context    string
		wantStatus int
		wantCode   string
	}{
		{name: "Record not found", err: gorm.ErrRecordNotFound, context: "get product", wantStatus: http.StatusNotFound, wantCode: ResourceNotFound},
		{name: "Rejected order", err: fmt.Errorf("checkout: %w", orderapi.ErrOrderRejected), context: "checkout", wantStatus: http.StatusBadGateway, wantCode: CheckoutOrderRejected},
		{name: "Invalid order request", err: orderapi.ErrInvalidRequest, context: "checkout", wantStatus: http.StatusUnprocessableEntity, wantCode: CheckoutOrderRejected},
		{name: "Order API down", err: orderapi.ErrNetworkError, context: "checkout", wantStatus: http.StatusBadGateway, wantCode: CheckoutOrderUnavailable},
		{name: "Order API unauthorized", err: orderapi.ErrUnauthorized, context: "checkout", wantStatus: http.StatusBadGateway, wantCode: CheckoutOrderUnavailable},
		{name: "Deadline", err: context.DeadlineExceeded, context: "checkout", wantStatus: http.StatusGatewayTimeout, wantCode: InternalExternalAPI},
		{name: "Database", err: fmt.Errorf("sql: database is closed"), context: "list products", wantStatus: http.StatusInternalServerError, wantCode: InternalDatabaseError},
		{name: "Unknown", err: fmt.Errorf("boom"), context: "cart", wantStatus: http.StatusInternalServerError, wantCode: InternalServerError},
		{name: "Nil", err: nil, context: "", wantStatus: http.StatusInternalServerError, wantCode: InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantStatus, info.Status)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestParseError_NotFoundMessages(t *testing.T) {
	assert.Equal(t, "Product not found", ParseError(gorm.ErrRecordNotFound, "get product").Message)
	assert.Equal(t, "Variant not found", ParseError(gorm.ErrRecordNotFound, "find variant").Message)
}

func TestParseAndRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ParseAndRespond(c, orderapi.ErrNetworkError, "checkout")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"CHECKOUT_ORDER_UNAVAILABLE","message":"The order service is unavailable. Please try again shortly"}`, w.Body.String())
}
