package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	Slug           string         `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Price          *float64       `json:"price"` // nil when the product is only sold through variants
	CompareAtPrice *float64       `json:"compare_at_price"`
	Images         []string       `gorm:"serializer:json;type:text" json:"images"`
	Featured       bool           `gorm:"default:false;index" json:"featured"`
	InStock        *bool          `gorm:"not null;default:true" json:"in_stock"` // nil is saved as true
	Discount       int            `gorm:"-" json:"discount_percentage,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Variants    []Variant    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Collections []Collection `gorm:"many2many:product_collections" json:"collections,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.InStock == nil {
		p.InStock = BoolOf(true)
	}
	return nil
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.Discount = DiscountPercentage(p.Price, p.CompareAtPrice)
	return nil
}

// Available reports whether the product can be added to a cart.
func (p Product) Available() bool {
	return p.InStock == nil || *p.InStock
}

// DiscountPercentage is the whole-number saving of price against the compare-at
// price, or 0 when there is none.
func DiscountPercentage(price, compareAt *float64) int {
	if price == nil || compareAt == nil || *compareAt <= *price || *compareAt <= 0 {
		return 0
	}
	return int(math.Round((*compareAt - *price) / *compareAt * 100))
}

// Ref returns the read-only view of the product a cart line item keeps.
func (p Product) Ref() ProductRef {
	images := make([]string, len(p.Images))
	copy(images, p.Images)
	return ProductRef{
		ID:     p.ID,
		Title:  p.Title,
		Price:  copyPrice(p.Price),
		Images: images,
	}
}

type Variant struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	ProductID      string         `gorm:"size:36;not null;index" json:"product_id"`
	Title          string         `gorm:"not null" json:"title"`
	Price          *float64       `json:"price"` // overrides the product price when set
	CompareAtPrice *float64       `json:"compare_at_price"`
	Image          string         `json:"image"`
	InStock        *bool          `gorm:"not null;default:true" json:"in_stock"`
	Discount       int            `gorm:"-" json:"discount_percentage,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Variant) TableName() string {
	return "variants"
}

func (v *Variant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

func (v *Variant) BeforeSave(tx *gorm.DB) error {
	if v.InStock == nil {
		v.InStock = BoolOf(true)
	}
	return nil
}

func (v *Variant) AfterFind(tx *gorm.DB) error {
	v.Discount = DiscountPercentage(v.Price, v.CompareAtPrice)
	return nil
}

func (v Variant) Available() bool {
	return v.InStock == nil || *v.InStock
}

func (v Variant) Ref() VariantRef {
	return VariantRef{
		ID:    v.ID,
		Title: v.Title,
		Price: copyPrice(v.Price),
		Image: v.Image,
	}
}

// PriceOf is a helper for building catalog fixtures.
func PriceOf(v float64) *float64 {
	return &v
}

func BoolOf(v bool) *bool {
	return &v
}

func copyPrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
