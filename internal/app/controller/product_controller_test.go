package controller

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductControllerTest(t *testing.T) (*gin.Engine, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	catalogRepo := repository.NewCatalogRepository(testDB)
	productController := NewProductController(service.NewProductService(catalogRepo))

	aperitivo := &model.Collection{Slug: "aperitivo", Name: "Aperitivo", Featured: true}
	require.NoError(t, catalogRepo.CreateCollection(aperitivo))

	featured := &model.Product{
		Slug:           "amaro",
		Title:          "Amaro",
		Price:          model.PriceOf(24),
		CompareAtPrice: model.PriceOf(30),
		Featured:       true,
		Variants:       []model.Variant{{Title: "700ml", Price: model.PriceOf(32)}},
		Collections:    []model.Collection{*aperitivo},
	}
	require.NoError(t, catalogRepo.CreateProduct(featured))
	require.NoError(t, catalogRepo.CreateProduct(&model.Product{Slug: "tonic", Title: "Tonic", Price: model.PriceOf(3)}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/products", productController.ListProducts)
	router.GET("/products/:id", productController.GetProduct)
	router.GET("/collections", productController.ListCollections)
	router.GET("/collections/:id", productController.GetCollection)
	return router, featured
}

func TestProductController_ListProducts(t *testing.T) {
	router, _ := setupProductControllerTest(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCount  float64
	}{
		{name: "All", query: "", wantStatus: http.StatusOK, wantCount: 2},
		{name: "Featured", query: "?featured=true", wantStatus: http.StatusOK, wantCount: 1},
		{name: "Search", query: "?search=Tonic", wantStatus: http.StatusOK, wantCount: 1},
		{name: "Limit", query: "?limit=1", wantStatus: http.StatusOK, wantCount: 1},
		{name: "Bad featured", query: "?featured=maybe", wantStatus: http.StatusBadRequest},
		{name: "Bad limit", query: "?limit=-1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := doJSON(t, router, http.MethodGet, "/products"+tt.query, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantCount, response["count"])
			} else {
				assert.Equal(t, apperrors.ValidationInvalidFormat, response["error"])
			}
		})
	}
}

func TestProductController_GetProduct(t *testing.T) {
	router, featured := setupProductControllerTest(t)

	for _, id := range []string{featured.ID, "amaro"} {
		w, response := doJSON(t, router, http.MethodGet, "/products/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		product := response["product"].(map[string]interface{})
		assert.Equal(t, "Amaro", product["title"])
		assert.Len(t, product["variants"], 1)
	}

	w, response := doJSON(t, router, http.MethodGet, "/products/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CatalogProductNotFound, response["error"])
}

func TestProductController_StockAndDiscount(t *testing.T) {
	router, featured := setupProductControllerTest(t)

	w, response := doJSON(t, router, http.MethodGet, "/products/"+featured.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	product := response["product"].(map[string]interface{})
	assert.Equal(t, true, product["in_stock"])
	assert.Equal(t, float64(30), product["compare_at_price"])
	assert.Equal(t, float64(20), product["discount_percentage"])
	assert.Len(t, product["collections"], 1)
}

func TestProductController_Collections(t *testing.T) {
	router, featured := setupProductControllerTest(t)

	w, response := doJSON(t, router, http.MethodGet, "/collections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), response["count"])
	collection := response["collections"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Aperitivo", collection["name"])

	w, response = doJSON(t, router, http.MethodGet, "/products?collection_id="+collection["id"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), response["count"])
	products := response["products"].([]interface{})
	assert.Equal(t, featured.ID, products[0].(map[string]interface{})["id"])

	w, _ = doJSON(t, router, http.MethodGet, "/collections/aperitivo", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, response = doJSON(t, router, http.MethodGet, "/collections/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CatalogCollectionNotFound, response["error"])

	w, _ = doJSON(t, router, http.MethodGet, "/collections?featured=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
