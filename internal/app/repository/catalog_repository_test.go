package repository

import (
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCatalogTest(t *testing.T) CatalogRepository {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewCatalogRepository(testDB)
}

func sampleProduct(slug string, featured bool) *model.Product {
	return &model.Product{
		Slug:        slug,
		Title:       "Spirit " + slug,
		Description: "Zero-proof spirit",
		Price:       model.PriceOf(24.5),
		Images:      []string{"https://cdn.example.com/" + slug + ".jpg"},
		Featured:    featured,
		Variants: []model.Variant{
			{Title: "350ml", Price: model.PriceOf(19.0)},
			{Title: "700ml", Price: model.PriceOf(32.0), Image: "https://cdn.example.com/" + slug + "-700.jpg"},
		},
	}
}

func TestCatalogRepository_CreateAndFind(t *testing.T) {
	repo := setupCatalogTest(t)

	product := sampleProduct("gin", false)
	require.NoError(t, repo.CreateProduct(product))
	assert.NotEmpty(t, product.ID)

	found, err := repo.FindProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spirit gin", found.Title)
	assert.Equal(t, []string{"https://cdn.example.com/gin.jpg"}, found.Images)
	require.NotNil(t, found.Price)
	assert.Equal(t, 24.5, *found.Price)
	assert.Len(t, found.Variants, 2)

	bySlug, err := repo.FindProductBySlug("gin")
	require.NoError(t, err)
	assert.Equal(t, product.ID, bySlug.ID)
}

func TestCatalogRepository_FindProductByID_NotFound(t *testing.T) {
	repo := setupCatalogTest(t)

	_, err := repo.FindProductByID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCatalogRepository_FindVariant(t *testing.T) {
	repo := setupCatalogTest(t)
	gin := sampleProduct("gin", false)
	rum := sampleProduct("rum", false)
	require.NoError(t, repo.CreateProduct(gin))
	require.NoError(t, repo.CreateProduct(rum))

	variant, err := repo.FindVariant(gin.ID, gin.Variants[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "700ml", variant.Title)

	// a variant of another product does not match
	_, err = repo.FindVariant(gin.ID, rum.Variants[0].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCatalogRepository_ListProducts(t *testing.T) {
	repo := setupCatalogTest(t)
	require.NoError(t, repo.CreateProduct(sampleProduct("gin", true)))
	require.NoError(t, repo.CreateProduct(sampleProduct("rum", false)))
	require.NoError(t, repo.CreateProduct(sampleProduct("tequila", false)))

	all, err := repo.ListProducts(ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "gin", all[0].Slug)

	featured, err := repo.ListProducts(ProductFilter{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "gin", featured[0].Slug)

	search, err := repo.ListProducts(ProductFilter{Search: "tequila"})
	require.NoError(t, err)
	require.Len(t, search, 1)

	page, err := repo.ListProducts(ProductFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestCatalogRepository_UpsertProducts(t *testing.T) {
	repo := setupCatalogTest(t)
	original := sampleProduct("gin", false)
	require.NoError(t, repo.CreateProduct(original))

	updated := *sampleProduct("gin", true)
	updated.Title = "London Dry"
	updated.Variants = []model.Variant{{Title: "1L", Price: model.PriceOf(40)}}

	created, err := repo.UpsertProducts([]model.Product{updated, *sampleProduct("rum", false)})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	found, err := repo.FindProductBySlug("gin")
	require.NoError(t, err)
	assert.Equal(t, original.ID, found.ID)
	assert.Equal(t, "London Dry", found.Title)
	assert.True(t, found.Featured)
	require.Len(t, found.Variants, 1)
	assert.Equal(t, "1L", found.Variants[0].Title)

	_, err = repo.FindProductBySlug("rum")
	assert.NoError(t, err)
}

func TestCatalogRepository_StockAndCompareAt(t *testing.T) {
	repo := setupCatalogTest(t)
	product := sampleProduct("gin", false)
	product.CompareAtPrice = model.PriceOf(49)
	product.Variants[0].InStock = model.BoolOf(false)
	require.NoError(t, repo.CreateProduct(product))

	found, err := repo.FindProductByID(product.ID)
	require.NoError(t, err)
	require.NotNil(t, found.InStock)
	assert.True(t, *found.InStock)
	assert.True(t, found.Available())
	assert.Equal(t, 50, found.Discount)
	require.Len(t, found.Variants, 2)
	for _, v := range found.Variants {
		assert.Equal(t, v.Title == "700ml", v.Available(), v.Title)
	}

	soldOut := sampleProduct("rum", false)
	soldOut.InStock = model.BoolOf(false)
	require.NoError(t, repo.CreateProduct(soldOut))
	found, err = repo.FindProductBySlug("rum")
	require.NoError(t, err)
	assert.False(t, found.Available())
}

func TestCatalogRepository_Collections(t *testing.T) {
	repo := setupCatalogTest(t)
	summer := &model.Collection{Slug: "summer", Name: "Summer", Featured: true}
	gifts := &model.Collection{Slug: "gifts", Name: "Gift sets"}
	require.NoError(t, repo.CreateCollection(summer))
	require.NoError(t, repo.CreateCollection(gifts))

	gin := sampleProduct("gin", false)
	gin.Collections = []model.Collection{*summer, *gifts}
	rum := sampleProduct("rum", false)
	rum.Collections = []model.Collection{*gifts}
	require.NoError(t, repo.CreateProduct(gin))
	require.NoError(t, repo.CreateProduct(rum))
	require.NoError(t, repo.CreateProduct(sampleProduct("tequila", false)))

	inSummer, err := repo.ListProducts(ProductFilter{CollectionID: summer.ID})
	require.NoError(t, err)
	require.Len(t, inSummer, 1)
	assert.Equal(t, "gin", inSummer[0].Slug)

	inGifts, err := repo.ListProducts(ProductFilter{CollectionID: gifts.ID})
	require.NoError(t, err)
	assert.Len(t, inGifts, 2)

	found, err := repo.FindProductByID(gin.ID)
	require.NoError(t, err)
	assert.Len(t, found.Collections, 2)

	collections, err := repo.ListCollections(false)
	require.NoError(t, err)
	require.Len(t, collections, 2)
	assert.Equal(t, "summer", collections[0].Slug)

	featured, err := repo.ListCollections(true)
	require.NoError(t, err)
	assert.Len(t, featured, 1)

	bySlug, err := repo.FindCollectionBySlug("gifts")
	require.NoError(t, err)
	assert.Equal(t, gifts.ID, bySlug.ID)

	_, err = repo.FindCollectionByID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCatalogRepository_UpsertProducts_Collections(t *testing.T) {
	repo := setupCatalogTest(t)
	existing := &model.Collection{Slug: "summer", Name: "Summer"}
	require.NoError(t, repo.CreateCollection(existing))

	gin := *sampleProduct("gin", false)
	gin.Collections = []model.Collection{{Slug: "summer", Name: "Summer"}, {Slug: "new", Name: "New in"}}
	_, err := repo.UpsertProducts([]model.Product{gin})
	require.NoError(t, err)

	found, err := repo.FindProductBySlug("gin")
	require.NoError(t, err)
	assert.Len(t, found.Collections, 2)

	collections, err := repo.ListCollections(false)
	require.NoError(t, err)
	assert.Len(t, collections, 2)

	// a re-import replaces membership
	again := *sampleProduct("gin", false)
	again.Collections = []model.Collection{{Slug: "new", Name: "New in"}}
	_, err = repo.UpsertProducts([]model.Product{again})
	require.NoError(t, err)

	found, err = repo.FindProductBySlug("gin")
	require.NoError(t, err)
	require.Len(t, found.Collections, 1)
	assert.Equal(t, "new", found.Collections[0].Slug)

	inSummer, err := repo.ListProducts(ProductFilter{CollectionID: existing.ID})
	require.NoError(t, err)
	assert.Empty(t, inSummer)
}
