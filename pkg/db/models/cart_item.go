package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one variant line within a cart. Unit price is snapshotted at
// write time; catalog price changes do not alter existing lines until the
// line is re-added or its quantity changes.
type CartItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID       uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_variant"`
	VariantID    uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_cart_variant"`
	SKU          string    `gorm:"column:sku;not null"`
	Quantity     int       `gorm:"column:quantity;not null"`
	UnitPriceVND int64     `gorm:"column:unit_price_vnd;not null"`
	LineTotalVND int64     `gorm:"column:line_total_vnd;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
