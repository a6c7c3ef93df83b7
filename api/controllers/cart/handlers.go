package cart

import (
	"net/http"

	"github.com/teslo-shop/storefront/api/responses"
	"github.com/teslo-shop/storefront/api/validators"
	cartsvc "github.com/teslo-shop/storefront/internal/cart"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
	"github.com/teslo-shop/storefront/pkg/storage"
)

// Get hydrates the browser's cart from storage.
func Get(provider storage.Provider, svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, snap, ok := hydrate(w, r, provider, svc, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// AddItem places a product variant in the cart, merging with an existing line.
func AddItem(provider storage.Provider, svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := payload.toLineItem()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dispatch(w, r, provider, svc, logg, cartsvc.AddLineItem{Item: item})
	}
}

// SetQuantity replaces a line's quantity. Zero or less removes the line.
func SetQuantity(provider storage.Provider, svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		key, err := parseKey(payload.ProductID, payload.Size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dispatch(w, r, provider, svc, logg, cartsvc.SetQuantity{Key: key, Quantity: *payload.Quantity})
	}
}

// RemoveItem drops the line identified by the productId and size query parameters.
func RemoveItem(provider storage.Provider, svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.RequireQueryParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rawSize, err := validators.RequireQueryParam(r, "size")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		key, err := parseKey(productID, rawSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dispatch(w, r, provider, svc, logg, cartsvc.RemoveLineItem{Key: key})
	}
}

func dispatch(w http.ResponseWriter, r *http.Request, provider storage.Provider, svc cartsvc.Service, logg *logger.Logger, cmd cartsvc.Command) {
	kv, current, ok := hydrate(w, r, provider, svc, logg)
	if !ok {
		return
	}
	next, err := svc.Dispatch(r.Context(), kv, current, cmd)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, next)
}

func hydrate(w http.ResponseWriter, r *http.Request, provider storage.Provider, svc cartsvc.Service, logg *logger.Logger) (storage.Store, cartsvc.Snapshot, bool) {
	if provider == nil || svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return nil, cartsvc.Snapshot{}, false
	}
	kv, err := provider.Open(w, r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, cartsvc.Snapshot{}, false
	}
	snap, err := svc.Hydrate(r.Context(), kv)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, cartsvc.Snapshot{}, false
	}
	return kv, snap, true
}
