package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	"github.com/minhlong-dev/industro-backend/pkg/enums"
)

// Identity is who the cart belongs to for this request. Either field
// may be empty; both may be set right after a guest signs in.
type Identity struct {
	UserID     *uuid.UUID
	GuestToken string
}

type AddItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0,lte=999"`
}

// SetQuantityRequest accepts zero and negative quantities; both remove
// the line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"lte=999"`
}

type ItemView struct {
	VariantID    uuid.UUID `json:"variant_id"`
	SKU          string    `json:"sku"`
	Quantity     int       `json:"quantity"`
	UnitPriceVND int64     `json:"unit_price_vnd"`
	LineTotalVND int64     `json:"line_total_vnd"`
}

type View struct {
	ID          uuid.UUID        `json:"id"`
	Status      enums.CartStatus `json:"status"`
	Items       []ItemView       `json:"items"`
	SubtotalVND int64            `json:"subtotal_vnd"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toView(cart *models.Cart) *View {
	view := &View{
		ID:          cart.ID,
		Status:      cart.Status,
		Items:       make([]ItemView, 0, len(cart.Items)),
		SubtotalVND: cart.SubtotalVND,
		UpdatedAt:   cart.UpdatedAt,
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		view.Items = append(view.Items, ItemView{
			VariantID:    item.VariantID,
			SKU:          item.SKU,
			Quantity:     item.Quantity,
			UnitPriceVND: item.UnitPriceVND,
			LineTotalVND: item.LineTotalVND,
		})
	}
	return view
}
