package controllers

import (
	"net/http"

	"github.com/soukly/soukly-backend/api/responses"
	"github.com/soukly/soukly-backend/api/validators"
	"github.com/soukly/soukly-backend/internal/checkout"
	"github.com/soukly/soukly-backend/pkg/enums"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/logger"
)

type checkoutPayload struct {
	PaymentMethod     string  `json:"payment_method" validate:"required,oneof=cash gateway qr"`
	DeliveryMode      string  `json:"delivery_mode" validate:"omitempty,oneof=delivery pickup"`
	UseWallet         bool    `json:"use_wallet"`
	Notes             *string `json:"notes" validate:"omitempty,max=1000"`
	CustomerName      string  `json:"customer_name" validate:"omitempty,max=120"`
	CustomerEmail     string  `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone     string  `json:"customer_phone" validate:"omitempty,max=32"`
	CustomerAddress   string  `json:"customer_address" validate:"omitempty,max=500"`
	CityID            *int64  `json:"city_id" validate:"omitempty,min=1"`
	Area              string  `json:"area" validate:"omitempty,max=120"`
	DeliveryCompanyID *int64  `json:"delivery_company_id" validate:"omitempty,min=1"`
}

// CheckoutSubmit turns the selected cart subset into an order and returns it
// with the amount the payment protocol must settle.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		identity, ok := requestIdentity(w, r, logg)
		if !ok {
			return
		}

		var payload checkoutPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := checkout.SubmitInput{
			PaymentMethod:     enums.PaymentMethod(payload.PaymentMethod),
			DeliveryMode:      enums.DeliveryMode(payload.DeliveryMode),
			UseWallet:         payload.UseWallet,
			Notes:             payload.Notes,
			CustomerName:      payload.CustomerName,
			CustomerEmail:     payload.CustomerEmail,
			CustomerPhone:     payload.CustomerPhone,
			CustomerAddress:   payload.CustomerAddress,
			CityID:            payload.CityID,
			Area:              payload.Area,
			DeliveryCompanyID: payload.DeliveryCompanyID,
		}

		submission, err := svc.Submit(ctx, identity, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, submission)
	}
}
