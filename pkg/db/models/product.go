package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product represents a catalog listing. Purchasable pricing and stock live on
// its variants.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	BrandID     uuid.UUID        `gorm:"column:brand_id;type:uuid;not null"`
	CategoryID  uuid.UUID        `gorm:"column:category_id;type:uuid;not null"`
	Title       string           `gorm:"column:title;not null"`
	Slug        string           `gorm:"column:slug;not null;uniqueIndex"`
	Description *string          `gorm:"column:description"`
	Images      pq.StringArray   `gorm:"column:images;type:text[]"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	Brand       *Brand           `gorm:"foreignKey:BrandID"`
	Category    *Category        `gorm:"foreignKey:CategoryID"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
