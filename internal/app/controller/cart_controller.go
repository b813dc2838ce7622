package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
)

type CartController struct {
	cartService service.CartService
	hub         *ws.Hub
	upgrader    *gorillaws.Upgrader
}

func NewCartController(cartService service.CartService, hub *ws.Hub, upgrader *gorillaws.Upgrader) *CartController {
	return &CartController{
		cartService: cartService,
		hub:         hub,
		upgrader:    upgrader,
	}
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id"`
	// Defaults to 1 when omitted
	Quantity *int `json:"quantity" binding:"omitempty,gte=1"`
}

type UpdateCartItemRequest struct {
	// Zero or negative removes the line
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart returns the session's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, model.NewCartView(ctrl.cartService.GetCart(sessionID)))
}

// AddToCart adds a product, or one of its variants, to the cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if !ctrl.quantityAllowed(c, quantity) {
		return
	}

	state, err := ctrl.cartService.AddItem(sessionID, req.ProductID, req.VariantID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.CatalogProductNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidVariant):
			apperrors.BadRequest(c, apperrors.CatalogInvalidVariant, "The selected variant is not available for this product")
		case errors.Is(err, service.ErrOutOfStock):
			apperrors.Conflict(c, apperrors.CatalogOutOfStock, "This product is out of stock")
		default:
			log.Error("Failed to add item to cart", err, map[string]interface{}{
				"session_id": sessionID,
				"product_id": req.ProductID,
			})
			apperrors.ParseAndRespond(c, err, "add to cart")
		}
		return
	}

	c.JSON(http.StatusOK, model.NewCartView(state))
}

// UpdateCartItem sets the quantity of a line
// PUT /api/v1/cart/items/:key
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update cart request", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if !ctrl.quantityAllowed(c, *req.Quantity) {
		return
	}

	state := ctrl.cartService.UpdateQuantity(sessionID, c.Param("key"), *req.Quantity)
	c.JSON(http.StatusOK, model.NewCartView(state))
}

// RemoveFromCart removes a line
// DELETE /api/v1/cart/items/:key
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	state := ctrl.cartService.RemoveItem(sessionID, c.Param("key"))
	c.JSON(http.StatusOK, model.NewCartView(state))
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	state := ctrl.cartService.ClearCart(sessionID)
	c.JSON(http.StatusOK, model.NewCartView(state))
}

// Stream upgrades to a WebSocket that receives the cart after every change,
// starting with the current one
// GET /api/v1/cart/ws?token=
func (ctrl *CartController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("Failed to upgrade to WebSocket", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, sessionID)
	if initial, err := ws.EncodeCartEvent(ctrl.cartService.GetCart(sessionID)); err == nil {
		client.Send <- initial
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Cart stream connected", map[string]interface{}{
		"session_id": sessionID,
	})
}

// quantityAllowed writes a 400 when quantity exceeds the per-line limit
func (ctrl *CartController) quantityAllowed(c *gin.Context, quantity int) bool {
	if limit := ctrl.cartService.MaxLineQuantity(); quantity > limit {
		apperrors.BadRequest(c, apperrors.CartQuantityTooLarge, fmt.Sprintf("quantity must be at most %d", limit))
		return false
	}
	return true
}

// requireSession writes a 401 when the session middleware did not run
func requireSession(c *gin.Context) (string, bool) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Warn("Missing session on cart route", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.Unauthorized(c, "")
		return "", false
	}
	return sessionID, true
}
