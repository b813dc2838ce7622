package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ListProducts returns the catalog
// GET /api/v1/products?featured=true&search=&limit=&offset=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.ProductListOptions{
		CollectionID: c.Query("collection_id"),
		Search:       c.Query("search"),
	}
	if featured := c.Query("featured"); featured != "" {
		v, err := strconv.ParseBool(featured)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "featured must be true or false")
			return
		}
		opts.FeaturedOnly = v
	}
	for name, dst := range map[string]*int{"limit": &opts.Limit, "offset": &opts.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, name+" must be a non-negative integer")
			return
		}
		*dst = v
	}

	products, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		apperrors.ParseAndRespond(c, err, "list products")
		return
	}

	log.Debug("Products fetched successfully", map[string]interface{}{
		"count": len(products),
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns a product with its variants, by ID or slug
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id := c.Param("id")
	product, err := ctrl.productService.GetProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found", map[string]interface{}{
				"product": id,
			})
			apperrors.NotFound(c, apperrors.CatalogProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product": id,
		})
		apperrors.ParseAndRespond(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// ListCollections returns the catalog collections, featured first
// GET /api/v1/collections
func (ctrl *ProductController) ListCollections(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	featuredOnly := false
	if featured := c.Query("featured"); featured != "" {
		v, err := strconv.ParseBool(featured)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "featured must be true or false")
			return
		}
		featuredOnly = v
	}

	collections, err := ctrl.productService.ListCollections(featuredOnly)
	if err != nil {
		log.Error("Failed to fetch collections", err, nil)
		apperrors.ParseAndRespond(c, err, "list collections")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collections": collections,
		"count":       len(collections),
	})
}

// GetCollection returns a collection by ID or slug
// GET /api/v1/collections/:id
func (ctrl *ProductController) GetCollection(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id := c.Param("id")
	collection, err := ctrl.productService.GetCollection(id)
	if err != nil {
		if errors.Is(err, service.ErrCollectionNotFound) {
			apperrors.NotFound(c, apperrors.CatalogCollectionNotFound, "Collection not found")
			return
		}
		log.Error("Failed to fetch collection", err, map[string]interface{}{
			"collection": id,
		})
		apperrors.ParseAndRespond(c, err, "get collection")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collection": collection,
	})
}
