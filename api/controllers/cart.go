package controllers

import (
	"net/http"
	"strings"

	"github.com/minhlong-dev/industro-backend/api/middleware"
	"github.com/minhlong-dev/industro-backend/api/responses"
	"github.com/minhlong-dev/industro-backend/api/validators"
	"github.com/minhlong-dev/industro-backend/internal/cart"
	"github.com/minhlong-dev/industro-backend/pkg/config"
	pkgerrors "github.com/minhlong-dev/industro-backend/pkg/errors"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
)

// cartIdentity builds the caller identity from the auth context and the
// guest cookie. Both may be present right after a guest signs in; the
// service merges in that case.
func cartIdentity(r *http.Request, cfg config.CartConfig) cart.Identity {
	id := cart.Identity{}
	if userID, ok := middleware.UserUUIDFromContext(r.Context()); ok {
		id.UserID = &userID
	}
	if cookie, err := r.Cookie(cfg.CookieName); err == nil {
		id.GuestToken = strings.TrimSpace(cookie.Value)
	}
	return id
}

func setGuestCookie(w http.ResponseWriter, cfg config.CartConfig, token string) {
	if token == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearGuestCookie(w http.ResponseWriter, cfg config.CartConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CartFetch resolves the caller's active cart, creating one for first-time
// guests and setting the guest cookie.
func CartFetch(svc *cart.Service, cfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		view, token, err := svc.Resolve(r.Context(), cartIdentity(r, cfg))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setGuestCookie(w, cfg, token)
		responses.WriteSuccess(w, view)
	}
}

func CartAddItem(svc *cart.Service, cfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body cart.AddItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, token, err := svc.AddItem(r.Context(), cartIdentity(r, cfg), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setGuestCookie(w, cfg, token)
		responses.WriteSuccess(w, view)
	}
}

func CartSetQuantity(svc *cart.Service, cfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		variantID, err := validators.ParsePathUUID(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cart.SetQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, token, err := svc.SetQuantity(r.Context(), cartIdentity(r, cfg), variantID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setGuestCookie(w, cfg, token)
		responses.WriteSuccess(w, view)
	}
}

func CartRemoveItem(svc *cart.Service, cfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		variantID, err := validators.ParsePathUUID(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, token, err := svc.RemoveItem(r.Context(), cartIdentity(r, cfg), variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setGuestCookie(w, cfg, token)
		responses.WriteSuccess(w, view)
	}
}

// CartMerge folds the guest cookie cart into the signed-in user's cart
// and retires the cookie. Safe to call again after the cookie is gone.
func CartMerge(svc *cart.Service, cfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		id := cartIdentity(r, cfg)
		if id.UserID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		view, _, err := svc.Resolve(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearGuestCookie(w, cfg)
		responses.WriteSuccess(w, view)
	}
}
