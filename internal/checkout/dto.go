package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	"github.com/minhlong-dev/industro-backend/pkg/enums"
)

type PreviewRequest struct {
	PromoCode string `json:"promo_code"`
}

type PlaceOrderRequest struct {
	FullName      string `json:"full_name" validate:"required"`
	Email         string `json:"email" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	TaxCode       string `json:"tax_code"`
	AddressLine   string `json:"address_line" validate:"required"`
	Note          string `json:"note"`
	PaymentMethod string `json:"payment_method" validate:"required"`
	PromoCode     string `json:"promo_code"`
}

type OrderItemView struct {
	SKU          string `json:"sku"`
	Title        string `json:"title"`
	Quantity     int    `json:"quantity"`
	UnitPriceVND int64  `json:"unit_price_vnd"`
	LineTotalVND int64  `json:"line_total_vnd"`
}

type OrderView struct {
	ID            uuid.UUID           `json:"id"`
	Code          string              `json:"code"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	CustomerName  string              `json:"customer_name"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	AddressLine   string              `json:"address_line"`
	PromoCode     string              `json:"promo_code,omitempty"`
	Items         []OrderItemView     `json:"items"`
	Quote         Quote               `json:"quote"`
	CreatedAt     time.Time           `json:"created_at"`
}

func toOrderView(order *models.Order) *OrderView {
	view := &OrderView{
		ID:            order.ID,
		Code:          order.Code,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		CustomerName:  order.CustomerName,
		Email:         order.Email,
		Phone:         order.Phone,
		AddressLine:   order.AddressLine,
		Items:         make([]OrderItemView, 0, len(order.Items)),
		Quote: Quote{
			SubtotalVND: order.SubtotalVND,
			DiscountVND: order.DiscountVND,
			TaxableVND:  order.SubtotalVND - order.DiscountVND,
			TaxVND:      order.TaxVND,
			ShippingVND: order.ShippingVND,
			TotalVND:    order.TotalVND,
		},
		CreatedAt: order.CreatedAt,
	}
	if order.PromoCode != nil {
		view.PromoCode = *order.PromoCode
		view.Quote.PromoCode = *order.PromoCode
	}
	for i := range order.Items {
		item := &order.Items[i]
		view.Items = append(view.Items, OrderItemView{
			SKU:          item.SKU,
			Title:        item.Title,
			Quantity:     item.Quantity,
			UnitPriceVND: item.UnitPriceVND,
			LineTotalVND: item.LineTotalVND,
		})
	}
	return view
}
