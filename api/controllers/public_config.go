package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/teslo-shop/storefront/api/responses"
	"github.com/teslo-shop/storefront/pkg/config"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
)

type publicConfigResponse struct {
	TaxRate         decimal.Decimal `json:"taxRate"`
	MaxLineQuantity int             `json:"maxLineQuantity"`
	DefaultCountry  string          `json:"defaultCountry"`
	Square          squareWidget    `json:"square"`
}

type squareWidget struct {
	ApplicationID string `json:"applicationId,omitempty"`
	Environment   string `json:"environment"`
}

// PublicConfig exposes the pricing knobs and payment widget settings the browser needs.
func PublicConfig(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rate, err := cfg.Storefront.TaxRateDecimal()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "tax rate misconfigured"))
			return
		}
		responses.WriteSuccess(w, publicConfigResponse{
			TaxRate:         rate,
			MaxLineQuantity: cfg.Storefront.MaxLineQuantity,
			DefaultCountry:  cfg.Storefront.DefaultCountry,
			Square: squareWidget{
				ApplicationID: cfg.Square.ApplicationID,
				Environment:   cfg.Square.Environment(),
			},
		})
	}
}
