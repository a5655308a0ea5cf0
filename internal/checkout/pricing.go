package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/minhlong-dev/industro-backend/pkg/config"
	"github.com/minhlong-dev/industro-backend/pkg/enums"
	"github.com/minhlong-dev/industro-backend/pkg/promo"
)

// Quote is the full price breakdown for a cart at checkout.
type Quote struct {
	SubtotalVND int64  `json:"subtotal_vnd"`
	DiscountVND int64  `json:"discount_vnd"`
	TaxableVND  int64  `json:"taxable_vnd"`
	TaxVND      int64  `json:"tax_vnd"`
	ShippingVND int64  `json:"shipping_vnd"`
	TotalVND    int64  `json:"total_vnd"`
	PromoCode   string `json:"promo_code,omitempty"`
}

// ComputeQuote prices a subtotal under an optional promo rule.
//
// The pipeline is fixed: discount applies to the subtotal, VAT applies
// to the discounted amount, shipping is added last and is never taxed.
// A fixed discount larger than the subtotal clamps to it; the taxable
// base never goes negative.
func ComputeQuote(subtotalVND int64, rule *promo.Rule, cfg config.CheckoutConfig) Quote {
	quote := Quote{
		SubtotalVND: subtotalVND,
		ShippingVND: cfg.ShippingFeeVND,
	}

	if rule != nil {
		quote.PromoCode = rule.Code
		switch rule.Kind {
		case enums.DiscountKindPercentage:
			quote.DiscountVND = percentOf(subtotalVND, rule.Percent)
		case enums.DiscountKindFixed:
			quote.DiscountVND = rule.AmountVND
		case enums.DiscountKindFreeShipping:
			quote.ShippingVND = 0
		}
	}

	if quote.DiscountVND > subtotalVND {
		quote.DiscountVND = subtotalVND
	}

	quote.TaxableVND = subtotalVND - quote.DiscountVND
	quote.TaxVND = percentOf(quote.TaxableVND, cfg.VATPercent)
	quote.TotalVND = quote.TaxableVND + quote.TaxVND + quote.ShippingVND
	return quote
}

// percentOf rounds half up to the nearest dong.
func percentOf(amountVND, percent int64) int64 {
	return decimal.NewFromInt(amountVND).
		Mul(decimal.NewFromInt(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
