package service

import (
	"errors"
	"fmt"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidVariant  = errors.New("variant does not belong to product")
	ErrOutOfStock      = errors.New("product is out of stock")
)

type CartService interface {
	GetCart(sessionID string) model.CartState
	AddItem(sessionID, productID, variantID string, quantity int) (model.CartState, error)
	UpdateQuantity(sessionID, key string, quantity int) model.CartState
	RemoveItem(sessionID, key string) model.CartState
	ClearCart(sessionID string) model.CartState
	// MaxLineQuantity is the largest quantity one line accepts.
	MaxLineQuantity() int
}

type cartService struct {
	catalogRepo repository.CatalogRepository
	carts       *cart.Registry
	metrics     *metrics.Metrics
}

func NewCartService(
	catalogRepo repository.CatalogRepository,
	carts *cart.Registry,
	m *metrics.Metrics,
) CartService {
	return &cartService{
		catalogRepo: catalogRepo,
		carts:       carts,
		metrics:     m,
	}
}

func (s *cartService) MaxLineQuantity() int {
	return s.carts.MaxLineQuantity()
}

func (s *cartService) GetCart(sessionID string) model.CartState {
	return s.carts.Get(sessionID).State()
}

// AddItem resolves the product (and variant) from the catalog and merges it into the cart.
func (s *cartService) AddItem(sessionID, productID, variantID string, quantity int) (model.CartState, error) {
	logger.Debug("Adding item to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
		"variant_id": variantID,
		"quantity":   quantity,
	})

	product, err := s.catalogRepo.FindProductByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found for cart", map[string]interface{}{
				"product_id": productID,
			})
			return model.CartState{}, ErrProductNotFound
		}
		return model.CartState{}, fmt.Errorf("failed to load product: %w", err)
	}
	if !product.Available() {
		logger.Warn("Out of stock product not added to cart", map[string]interface{}{
			"product_id": productID,
		})
		return model.CartState{}, ErrOutOfStock
	}

	var variant *model.VariantRef
	if variantID != "" {
		v, err := s.catalogRepo.FindVariant(product.ID, variantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Variant not found for product", map[string]interface{}{
					"product_id": productID,
					"variant_id": variantID,
				})
				return model.CartState{}, ErrInvalidVariant
			}
			return model.CartState{}, fmt.Errorf("failed to load variant: %w", err)
		}
		if !v.Available() {
			logger.Warn("Out of stock variant not added to cart", map[string]interface{}{
				"product_id": productID,
				"variant_id": variantID,
			})
			return model.CartState{}, ErrOutOfStock
		}
		ref := v.Ref()
		variant = &ref
	}

	state := s.carts.Get(sessionID).AddItem(product.Ref(), variant, quantity)
	s.metrics.CartOperation("add")

	logger.Info("Item added to cart", map[string]interface{}{
		"session_id":  sessionID,
		"product_id":  productID,
		"total_items": state.TotalItems,
		"version":     state.Version,
	})
	return state, nil
}

func (s *cartService) UpdateQuantity(sessionID, key string, quantity int) model.CartState {
	state := s.carts.Get(sessionID).UpdateQuantity(key, quantity)
	s.metrics.CartOperation("update")

	logger.Debug("Cart item quantity updated", map[string]interface{}{
		"session_id": sessionID,
		"key":        key,
		"quantity":   quantity,
		"version":    state.Version,
	})
	return state
}

func (s *cartService) RemoveItem(sessionID, key string) model.CartState {
	state := s.carts.Get(sessionID).RemoveItem(key)
	s.metrics.CartOperation("remove")

	logger.Debug("Cart item removed", map[string]interface{}{
		"session_id": sessionID,
		"key":        key,
		"version":    state.Version,
	})
	return state
}

func (s *cartService) ClearCart(sessionID string) model.CartState {
	state := s.carts.Get(sessionID).Clear()
	s.metrics.CartOperation("clear")

	logger.Info("Cart cleared", map[string]interface{}{
		"session_id": sessionID,
	})
	return state
}
