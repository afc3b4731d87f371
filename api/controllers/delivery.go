package controllers

import (
	"net/http"

	"github.com/soukly/soukly-backend/api/responses"
	"github.com/soukly/soukly-backend/api/validators"
	"github.com/soukly/soukly-backend/internal/delivery"
	"github.com/soukly/soukly-backend/pkg/config"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/logger"
)

// DeliveryCities lists the priced cities of the default delivery provider.
func DeliveryCities(svc delivery.Service, cfg config.DeliveryConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		cities, err := svc.ListCities(ctx, cfg.DefaultProviderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"cities": cities})
	}
}

// DeliveryRegions lists the regions of a city with their optional overrides.
func DeliveryRegions(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		cityID, err := validators.ParseInt64Param(r, "cityID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		regions, err := svc.ListRegions(ctx, cityID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"regions": regions})
	}
}
