package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhlong-dev/industro-backend/pkg/enums"
)

// Cart is a shopping session. Guest carts carry a cookie token and no user;
// adoption at login sets the owner and clears the token.
type Cart struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID      *uuid.UUID       `gorm:"column:user_id;type:uuid;index"`
	GuestToken  *string          `gorm:"column:guest_token;uniqueIndex"`
	Status      enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	SubtotalVND int64            `gorm:"column:subtotal_vnd;not null;default:0"`
	DiscountVND int64            `gorm:"column:discount_vnd;not null;default:0"`
	TaxVND      int64            `gorm:"column:tax_vnd;not null;default:0"`
	ShippingVND int64            `gorm:"column:shipping_vnd;not null;default:0"`
	TotalVND    int64            `gorm:"column:total_vnd;not null;default:0"`
	Items       []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
