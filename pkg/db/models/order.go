package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhlong-dev/industro-backend/pkg/enums"
)

// Order persists a confirmed checkout with its contact snapshot and totals.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Code          string              `gorm:"column:code;not null;uniqueIndex"`
	UserID        *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	CartID        *uuid.UUID          `gorm:"column:cart_id;type:uuid"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	Email         string              `gorm:"column:email;not null"`
	Phone         string              `gorm:"column:phone;not null"`
	TaxCode       *string             `gorm:"column:tax_code"`
	AddressLine   string              `gorm:"column:address_line;not null"`
	Note          *string             `gorm:"column:note"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PromoCode     *string             `gorm:"column:promo_code"`
	SubtotalVND   int64               `gorm:"column:subtotal_vnd;not null"`
	DiscountVND   int64               `gorm:"column:discount_vnd;not null;default:0"`
	TaxVND        int64               `gorm:"column:tax_vnd;not null;default:0"`
	ShippingVND   int64               `gorm:"column:shipping_vnd;not null;default:0"`
	TotalVND      int64               `gorm:"column:total_vnd;not null"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
