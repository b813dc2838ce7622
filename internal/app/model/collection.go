package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection groups products for browsing, e.g. "Summer" or "Gift sets".
type Collection struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Slug        string         `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Image       string         `json:"image"`
	Featured    bool           `gorm:"default:false;index" json:"featured"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Collection) TableName() string {
	return "collections"
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
