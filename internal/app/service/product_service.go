package service

import (
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

const defaultProductLimit = 24

var ErrCollectionNotFound = errors.New("collection not found")

type ProductListOptions struct {
	FeaturedOnly bool
	CollectionID string
	Search       string
	Limit        int
	Offset       int
}

type ProductService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, error)
	// GetProduct looks a product up by ID, then by slug.
	GetProduct(idOrSlug string) (*model.Product, error)
	ListCollections(featuredOnly bool) ([]model.Collection, error)
	// GetCollection looks a collection up by ID, then by slug.
	GetCollection(idOrSlug string) (*model.Collection, error)
}

type productService struct {
	catalogRepo repository.CatalogRepository
}

func NewProductService(catalogRepo repository.CatalogRepository) ProductService {
	return &productService{
		catalogRepo: catalogRepo,
	}
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultProductLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	products, err := s.catalogRepo.ListProducts(repository.ProductFilter{
		FeaturedOnly: opts.FeaturedOnly,
		CollectionID: opts.CollectionID,
		Search:       opts.Search,
		Limit:        opts.Limit,
		Offset:       opts.Offset,
	})
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"featured_only": opts.FeaturedOnly,
			"collection_id": opts.CollectionID,
			"search":        opts.Search,
		})
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProduct(idOrSlug string) (*model.Product, error) {
	product, err := s.catalogRepo.FindProductByID(idOrSlug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		product, err = s.catalogRepo.FindProductBySlug(idOrSlug)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product": idOrSlug,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) ListCollections(featuredOnly bool) ([]model.Collection, error) {
	return s.catalogRepo.ListCollections(featuredOnly)
}

func (s *productService) GetCollection(idOrSlug string) (*model.Collection, error) {
	collection, err := s.catalogRepo.FindCollectionByID(idOrSlug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		collection, err = s.catalogRepo.FindCollectionBySlug(idOrSlug)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollectionNotFound
		}
		logger.Error("Failed to fetch collection", err, map[string]interface{}{
			"collection": idOrSlug,
		})
		return nil, err
	}
	return collection, nil
}
