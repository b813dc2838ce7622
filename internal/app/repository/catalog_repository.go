package repository

import (
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

const maxListLimit = 100

type ProductFilter struct {
	FeaturedOnly bool
	CollectionID string
	Search       string
	Limit        int
	Offset       int
}

type CatalogRepository interface {
	CreateProduct(product *model.Product) error
	FindProductByID(id string) (*model.Product, error)
	FindProductBySlug(slug string) (*model.Product, error)
	FindVariant(productID, variantID string) (*model.Variant, error)
	ListProducts(filter ProductFilter) ([]model.Product, error)
	UpsertProducts(products []model.Product) (int, error)

	CreateCollection(collection *model.Collection) error
	FindCollectionByID(id string) (*model.Collection, error)
	FindCollectionBySlug(slug string) (*model.Collection, error)
	ListCollections(featuredOnly bool) ([]model.Collection, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CreateProduct(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"slug":     product.Slug,
		"variants": len(product.Variants),
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"slug": product.Slug,
		})
		return err
	}
	return nil
}

func (r *catalogRepository) FindProductByID(id string) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("Collections").First(&product, "id = ?", id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

func (r *catalogRepository) FindProductBySlug(slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Variants").Preload("Collections").Where("slug = ?", slug).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *catalogRepository) FindVariant(productID, variantID string) (*model.Variant, error) {
	var variant model.Variant
	err := r.db.Where("id = ? AND product_id = ?", variantID, productID).First(&variant).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find variant in database", err, map[string]interface{}{
				"product_id": productID,
				"variant_id": variantID,
			})
		}
		return nil, err
	}
	return &variant, nil
}

func (r *catalogRepository) ListProducts(filter ProductFilter) ([]model.Product, error) {
	query := r.db.Model(&model.Product{}).Preload("Variants")

	if filter.FeaturedOnly {
		query = query.Where("featured = ?", true)
	}
	if filter.CollectionID != "" {
		members := r.db.Table("product_collections").Select("product_id").Where("collection_id = ?", filter.CollectionID)
		query = query.Where("id IN (?)", members)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	query = query.Order("featured DESC").Order("created_at DESC").Limit(limit)
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to list products in database", err, map[string]interface{}{
			"featured_only": filter.FeaturedOnly,
			"collection_id": filter.CollectionID,
			"search":        filter.Search,
		})
		return nil, err
	}

	logger.Debug("Products listed from database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

// UpsertProducts inserts or replaces products matched by slug, variants and collection
// membership included. Collections are matched by slug and created when missing.
// It returns how many products were newly created.
func (r *catalogRepository) UpsertProducts(products []model.Product) (int, error) {
	created := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for i := range products {
			incoming := products[i]
			collections, err := resolveCollections(tx, incoming.Collections)
			if err != nil {
				return err
			}
			incoming.Collections = nil

			var existing model.Product
			err = tx.Where("slug = ?", incoming.Slug).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&incoming).Error; err != nil {
					return err
				}
				created++
			case err != nil:
				return err
			default:
				if err := replaceProduct(tx, &existing, &incoming); err != nil {
					return err
				}
			}

			if err := tx.Model(&incoming).Association("Collections").Replace(collections); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to upsert products", err, map[string]interface{}{
			"count": len(products),
		})
		return 0, err
	}

	logger.Info("Products upserted", map[string]interface{}{
		"total":   len(products),
		"created": created,
	})
	return created, nil
}

func replaceProduct(tx *gorm.DB, existing, incoming *model.Product) error {
	incoming.ID = existing.ID
	incoming.CreatedAt = existing.CreatedAt
	variants := incoming.Variants
	incoming.Variants = nil
	if err := tx.Save(incoming).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where("product_id = ?", existing.ID).Delete(&model.Variant{}).Error; err != nil {
		return err
	}
	for j := range variants {
		variants[j].ProductID = existing.ID
		if err := tx.Create(&variants[j]).Error; err != nil {
			return err
		}
	}
	incoming.Variants = variants
	return nil
}

// resolveCollections swaps each collection for the stored one with the same slug,
// creating the ones that do not exist yet.
func resolveCollections(tx *gorm.DB, collections []model.Collection) ([]model.Collection, error) {
	resolved := make([]model.Collection, 0, len(collections))
	for _, c := range collections {
		var stored model.Collection
		err := tx.Where("slug = ?", c.Slug).First(&stored).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stored = c
			err = tx.Create(&stored).Error
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, stored)
	}
	return resolved, nil
}

func (r *catalogRepository) CreateCollection(collection *model.Collection) error {
	if err := r.db.Create(collection).Error; err != nil {
		logger.Error("Failed to create collection in database", err, map[string]interface{}{
			"slug": collection.Slug,
		})
		return err
	}
	return nil
}

func (r *catalogRepository) FindCollectionByID(id string) (*model.Collection, error) {
	var collection model.Collection
	if err := r.db.First(&collection, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *catalogRepository) FindCollectionBySlug(slug string) (*model.Collection, error) {
	var collection model.Collection
	if err := r.db.Where("slug = ?", slug).First(&collection).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *catalogRepository) ListCollections(featuredOnly bool) ([]model.Collection, error) {
	query := r.db.Model(&model.Collection{})
	if featuredOnly {
		query = query.Where("featured = ?", true)
	}

	var collections []model.Collection
	if err := query.Order("featured DESC").Order("name ASC").Find(&collections).Error; err != nil {
		logger.Error("Failed to list collections in database", err, map[string]interface{}{
			"featured_only": featuredOnly,
		})
		return nil, err
	}
	return collections, nil
}
