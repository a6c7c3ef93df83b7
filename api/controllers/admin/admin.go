package admin

import (
	"net/http"

	"github.com/teslo-shop/storefront/api/middleware"
	"github.com/teslo-shop/storefront/api/responses"
	"github.com/teslo-shop/storefront/api/validators"
	adminsvc "github.com/teslo-shop/storefront/internal/admin"
	"github.com/teslo-shop/storefront/pkg/enums"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
)

type updateRoleRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

func Orders(svc adminsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}
		rows, err := svc.Orders(r.Context(), actorFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func Products(svc adminsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}
		rows, err := svc.Products(r.Context(), actorFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func Users(svc adminsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}
		rows, err := svc.Users(r.Context(), actorFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// UpdateRole changes a user's role. When the backend refuses, the error carries the
// restored rows under details.users so the table can be redrawn without a refetch.
func UpdateRole(svc adminsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		var payload updateRoleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.UpdateRole(r.Context(), actorFromRequest(r), payload.UserID, enums.Role(payload.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, withRestoredRows(err, rows))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// withRestoredRows adds the reverted user table to the error details, keeping whatever
// the backend already reported.
func withRestoredRows(err error, rows []adminsvc.UserRow) error {
	typed := pkgerrors.As(err)
	if typed == nil || rows == nil {
		return err
	}
	details := map[string]any{}
	switch existing := typed.Details().(type) {
	case nil:
	case map[string]any:
		for k, v := range existing {
			details[k] = v
		}
	case map[string]string:
		for k, v := range existing {
			details[k] = v
		}
	default:
		details["cause"] = existing
	}
	details["users"] = rows
	return pkgerrors.Wrap(typed.Code(), err, typed.Message()).WithDetails(details)
}

func actorFromRequest(r *http.Request) adminsvc.Actor {
	actor := adminsvc.Actor{Token: middleware.TokenFromContext(r.Context())}
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		actor.UserID = claims.UserID
		actor.Email = claims.Email
		actor.Name = claims.Name
	}
	return actor
}
