package controllers

import (
	"net/http"

	"github.com/soukly/soukly-backend/api/middleware"
	"github.com/soukly/soukly-backend/api/responses"
	"github.com/soukly/soukly-backend/api/validators"
	"github.com/soukly/soukly-backend/internal/cartview"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/logger"
	"github.com/soukly/soukly-backend/pkg/types"
)

func requestIdentity(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (types.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return types.Identity{}, false
	}
	return identity, true
}

// CartView returns the canonical cart with its current selection.
func CartView(svc cartview.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		identity, ok := requestIdentity(w, r, logg)
		if !ok {
			return
		}

		cart, err := svc.Load(ctx, identity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartToggleSelection flips one line in or out of the selected subset.
func CartToggleSelection(svc cartview.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		identity, ok := requestIdentity(w, r, logg)
		if !ok {
			return
		}

		lineID, err := validators.ParseUUIDParam(r, "lineID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cart, err := svc.Toggle(ctx, identity, lineID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartToggleAll selects every line, or deselects all when all are selected.
func CartToggleAll(svc cartview.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		identity, ok := requestIdentity(w, r, logg)
		if !ok {
			return
		}

		cart, err := svc.ToggleAll(ctx, identity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}
