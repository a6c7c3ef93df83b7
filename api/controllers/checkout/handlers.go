package checkout

import (
	"net/http"

	"github.com/teslo-shop/storefront/api/responses"
	"github.com/teslo-shop/storefront/api/validators"
	cartsvc "github.com/teslo-shop/storefront/internal/cart"
	checkoutsvc "github.com/teslo-shop/storefront/internal/checkout"
	"github.com/teslo-shop/storefront/pkg/enums"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
	"github.com/teslo-shop/storefront/pkg/storage"
)

type advanceRequest struct {
	From string `json:"from" validate:"required"`
}

type advanceResponse struct {
	Step enums.CheckoutStep `json:"step"`
}

// Advance reports the step the browser may move to from the given one.
func Advance(provider storage.Provider, carts cartsvc.Service, svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if provider == nil || carts == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload advanceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := enums.ParseCheckoutStep(payload.From)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout step"))
			return
		}

		kv, err := provider.Open(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := carts.Hydrate(r.Context(), kv)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := svc.Advance(snap, from)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, advanceResponse{Step: next})
	}
}

// SubmitAddress stores the shipping address and moves the browser to the summary step.
func SubmitAddress(provider storage.Provider, svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if provider == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var form checkoutsvc.AddressForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kv, err := provider.Open(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.SubmitAddress(r.Context(), kv, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Summary returns the cart under review together with its shipping address.
func Summary(provider storage.Provider, svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if provider == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		kv, err := provider.Open(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Summary(r.Context(), kv)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
