package controllers

import (
	"net/http"

	"github.com/soukly/soukly-backend/api/responses"
	"github.com/soukly/soukly-backend/api/validators"
	"github.com/soukly/soukly-backend/internal/pricing"
	"github.com/soukly/soukly-backend/pkg/enums"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/logger"
)

type quotePayload struct {
	DeliveryMode string `json:"delivery_mode" validate:"omitempty,oneof=delivery pickup"`
	CityID       *int64 `json:"city_id" validate:"omitempty,min=1"`
	RegionID     *int64 `json:"region_id" validate:"omitempty,min=1"`
	UseWallet    bool   `json:"use_wallet"`
}

// CartQuote prices the selected cart subset under the shopper's current
// delivery and wallet choices. The result is provisional; checkout recomputes.
func CartQuote(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		identity, ok := requestIdentity(w, r, logg)
		if !ok {
			return
		}

		var payload quotePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		params := pricing.QuoteParams{
			DeliveryMode: enums.DeliveryMode(payload.DeliveryMode),
			CityID:       payload.CityID,
			RegionID:     payload.RegionID,
			UseWallet:    payload.UseWallet,
		}

		quote, err := svc.Quote(ctx, identity, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}
