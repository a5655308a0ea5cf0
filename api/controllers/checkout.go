package controllers

import (
	"net/http"

	"github.com/minhlong-dev/industro-backend/api/responses"
	"github.com/minhlong-dev/industro-backend/api/validators"
	"github.com/minhlong-dev/industro-backend/internal/checkout"
	"github.com/minhlong-dev/industro-backend/pkg/config"
	pkgerrors "github.com/minhlong-dev/industro-backend/pkg/errors"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
)

// CheckoutPreview prices the active cart without touching stock or the
// cart itself.
func CheckoutPreview(svc *checkout.Service, cfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkout.PreviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Preview(r.Context(), cartIdentity(r, cfg), body.PromoCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// CheckoutPlaceOrder turns the active cart into an order. The cart cookie
// is cleared on success; the cart it pointed at is retired either way.
func CheckoutPlaceOrder(svc *checkout.Service, cfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkout.PlaceOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), cartIdentity(r, cfg), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearGuestCookie(w, cfg)
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
