package orders

import (
	"net/http"

	"github.com/teslo-shop/storefront/api/middleware"
	"github.com/teslo-shop/storefront/api/responses"
	"github.com/teslo-shop/storefront/api/validators"
	internalorders "github.com/teslo-shop/storefront/internal/orders"
	"github.com/teslo-shop/storefront/internal/payments"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
)

// View renders an order for its owner. Every other outcome is a 303 to the page the
// browser should land on instead.
func View(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.RequirePathParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var session *internalorders.Session
		if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
			session = &internalorders.Session{
				UserID: claims.UserID,
				Token:  middleware.TokenFromContext(r.Context()),
			}
		}

		decision, err := svc.View(r.Context(), session, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if decision.Redirect() {
			responses.WriteRedirect(w, decision.RedirectTo)
			return
		}
		responses.WriteSuccess(w, decision.Order)
	}
}

// Pay forwards the payment widget's capture for the order to the backend.
func Pay(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		orderID, err := validators.RequirePathParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var capture payments.Capture
		if err := validators.DecodeJSONBody(r, &capture); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Confirm(r.Context(),
			middleware.TokenFromContext(r.Context()),
			middleware.UserIDFromContext(r.Context()),
			orderID,
			capture,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}
