package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	"github.com/minhlong-dev/industro-backend/pkg/enums"
)

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ItemView struct {
	SKU          string `json:"sku"`
	Title        string `json:"title"`
	Quantity     int    `json:"quantity"`
	UnitPriceVND int64  `json:"unit_price_vnd"`
	LineTotalVND int64  `json:"line_total_vnd"`
}

type View struct {
	ID            uuid.UUID           `json:"id"`
	Code          string              `json:"code"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	CustomerName  string              `json:"customer_name"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	TaxCode       string              `json:"tax_code,omitempty"`
	AddressLine   string              `json:"address_line"`
	Note          string              `json:"note,omitempty"`
	PromoCode     string              `json:"promo_code,omitempty"`
	SubtotalVND   int64               `json:"subtotal_vnd"`
	DiscountVND   int64               `json:"discount_vnd"`
	TaxVND        int64               `json:"tax_vnd"`
	ShippingVND   int64               `json:"shipping_vnd"`
	TotalVND      int64               `json:"total_vnd"`
	Items         []ItemView          `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func toView(order *models.Order) *View {
	view := &View{
		ID:            order.ID,
		Code:          order.Code,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		CustomerName:  order.CustomerName,
		Email:         order.Email,
		Phone:         order.Phone,
		AddressLine:   order.AddressLine,
		SubtotalVND:   order.SubtotalVND,
		DiscountVND:   order.DiscountVND,
		TaxVND:        order.TaxVND,
		ShippingVND:   order.ShippingVND,
		TotalVND:      order.TotalVND,
		Items:         make([]ItemView, 0, len(order.Items)),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.TaxCode != nil {
		view.TaxCode = *order.TaxCode
	}
	if order.Note != nil {
		view.Note = *order.Note
	}
	if order.PromoCode != nil {
		view.PromoCode = *order.PromoCode
	}
	for i := range order.Items {
		item := &order.Items[i]
		view.Items = append(view.Items, ItemView{
			SKU:          item.SKU,
			Title:        item.Title,
			Quantity:     item.Quantity,
			UnitPriceVND: item.UnitPriceVND,
			LineTotalVND: item.LineTotalVND,
		})
	}
	return view
}
