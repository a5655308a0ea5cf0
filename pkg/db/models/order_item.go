package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItem freezes one cart line at checkout time.
type OrderItem struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	VariantID    *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	SKU          string     `gorm:"column:sku;not null"`
	Title        string     `gorm:"column:title;not null"`
	Quantity     int        `gorm:"column:quantity;not null"`
	UnitPriceVND int64      `gorm:"column:unit_price_vnd;not null"`
	LineTotalVND int64      `gorm:"column:line_total_vnd;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
