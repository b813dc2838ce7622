package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

type CheckoutRequest struct {
	CurrencyCode string `json:"currency_code" binding:"omitempty,len=3,alpha"`
}

// Checkout hands the cart off to the order backend
// POST /api/v1/checkout
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "currency_code must be a 3 letter code")
		return
	}

	result, err := ctrl.checkoutService.Checkout(c.Request.Context(), sessionID, req.CurrencyCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Your cart is empty")
		case errors.Is(err, service.ErrCheckoutInProgress):
			apperrors.Conflict(c, apperrors.CheckoutInProgress, "A checkout is already in progress")
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"session_id": sessionID,
			})
			apperrors.ParseAndRespond(c, err, "checkout")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id":       result.Order.OrderID,
		"order":          result.Order,
		"cart":           result.Snapshot.View(),
		"snapshot_saved": result.SnapshotSaved,
	})
}

// GetConfirmation returns the order and cart snapshot of the last checkout
// GET /api/v1/checkout/confirmation
func (ctrl *CheckoutController) GetConfirmation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	confirmation, err := ctrl.checkoutService.GetConfirmation(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrConfirmationNotFound) {
			apperrors.NotFound(c, apperrors.CheckoutConfirmationNotFound, "No checkout found for this session")
			return
		}
		log.Error("Failed to read checkout confirmation", err, map[string]interface{}{
			"session_id": sessionID,
		})
		apperrors.ParseAndRespond(c, err, "checkout confirmation")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":    confirmation.OrderID,
		"order":       confirmation.Order,
		"cart":        confirmation.Snapshot.View(),
		"captured_at": confirmation.Snapshot.CapturedAt,
	})
}
