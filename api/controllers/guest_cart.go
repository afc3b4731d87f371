package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/soukly/soukly-backend/api/middleware"
	"github.com/soukly/soukly-backend/api/responses"
	"github.com/soukly/soukly-backend/api/validators"
	"github.com/soukly/soukly-backend/internal/guestcart"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/logger"
)

type guestCartItemPayload struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

func guestDeviceToken(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return "", false
	}
	if identity.IsAccount() {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "guest cart is device-scoped; authenticated carts are server side"))
		return "", false
	}
	return identity.DeviceToken, true
}

// GuestCartItems returns the ordered guest cart lines for the device.
func GuestCartItems(svc guestcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "guest cart service unavailable"))
			return
		}

		deviceToken, ok := guestDeviceToken(w, r, logg)
		if !ok {
			return
		}

		items, err := svc.Items(ctx, deviceToken)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if items == nil {
			items = []guestcart.Line{}
		}

		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// GuestCartAdd increments or appends a product line, subject to stock.
func GuestCartAdd(svc guestcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "guest cart service unavailable"))
			return
		}

		deviceToken, ok := guestDeviceToken(w, r, logg)
		if !ok {
			return
		}

		var payload guestCartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		quantity := payload.Quantity
		if quantity < 1 {
			quantity = 1
		}

		if err := svc.AddItem(ctx, deviceToken, productID, quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.Items(ctx, deviceToken)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"items": items})
	}
}

// GuestCartUpdateQuantity sets the absolute quantity of an existing line.
func GuestCartUpdateQuantity(svc guestcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "guest cart service unavailable"))
			return
		}

		deviceToken, ok := guestDeviceToken(w, r, logg)
		if !ok {
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload struct {
			Quantity int `json:"quantity" validate:"required,min=1"`
		}
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.UpdateQuantity(ctx, deviceToken, productID, payload.Quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.Items(ctx, deviceToken)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// GuestCartRemove drops a product line from the cart.
func GuestCartRemove(svc guestcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "guest cart service unavailable"))
			return
		}

		deviceToken, ok := guestDeviceToken(w, r, logg)
		if !ok {
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.RemoveItem(ctx, deviceToken, productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.Items(ctx, deviceToken)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// GuestCartClear empties the device's cart.
func GuestCartClear(svc guestcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "guest cart service unavailable"))
			return
		}

		deviceToken, ok := guestDeviceToken(w, r, logg)
		if !ok {
			return
		}

		if err := svc.Clear(ctx, deviceToken); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": []guestcart.Line{}})
	}
}
