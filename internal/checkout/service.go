package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukly/soukly-backend/internal/cartview"
	"github.com/soukly/soukly-backend/pkg/commerce"
	"github.com/soukly/soukly-backend/pkg/config"
	"github.com/soukly/soukly-backend/pkg/enums"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/logger"
	"github.com/soukly/soukly-backend/pkg/metrics"
	"github.com/soukly/soukly-backend/pkg/types"
)

type cartLoader interface {
	Load(ctx context.Context, identity types.Identity) (*cartview.Cart, error)
}

type walletReader interface {
	BalanceByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, req commerce.CreateOrderRequest) (*commerce.Order, error)
}

type guestCartClearer interface {
	Clear(ctx context.Context, deviceToken string) error
}

// SubmitInput is the shopper's checkout form after body validation.
type SubmitInput struct {
	PaymentMethod     enums.PaymentMethod
	DeliveryMode      enums.DeliveryMode
	UseWallet         bool
	Notes             *string
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string
	CustomerAddress   string
	CityID            *int64
	Area              string
	DeliveryCompanyID *int64
}

// Submission is the created order plus the amount the payment protocol
// must settle.
type Submission struct {
	Order       *commerce.Order `json:"order"`
	AmountToPay decimal.Decimal `json:"amount_to_pay"`
}

// Service validates checkout input, creates the order, and normalizes the
// payable amount.
type Service interface {
	Submit(ctx context.Context, identity types.Identity, input SubmitInput) (*Submission, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Carts     cartLoader
	Wallets   walletReader
	Orders    orderCreator
	GuestCart guestCartClearer
	Logger    *logger.Logger
	Metrics   *metrics.CheckoutMetrics
	Payment   config.PaymentConfig
	Delivery  config.DeliveryConfig
}

type service struct {
	carts          cartLoader
	wallets        walletReader
	orders         orderCreator
	guestCart      guestCartClearer
	logger         *logger.Logger
	metrics        *metrics.CheckoutMetrics
	pickupLocation string
	defaultCarrier int64
	now            func() time.Time
}

// NewService wires the checkout submitter.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	if params.Wallets == nil {
		return nil, fmt.Errorf("wallet reader required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if params.GuestCart == nil {
		return nil, fmt.Errorf("guest cart clearer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	pickup := strings.TrimSpace(params.Payment.PickupLocation)
	if pickup == "" {
		pickup = "pickup"
	}
	return &service{
		carts:          params.Carts,
		wallets:        params.Wallets,
		orders:         params.Orders,
		guestCart:      params.GuestCart,
		logger:         params.Logger,
		metrics:        params.Metrics,
		pickupLocation: pickup,
		defaultCarrier: params.Delivery.DefaultProviderID,
		now:            time.Now,
	}, nil
}

// Submit runs validation, builds the identity-shaped request, and creates
// the order. Failures leave the cart untouched so resubmission is safe;
// there is no automatic retry.
func (s *service) Submit(ctx context.Context, identity types.Identity, input SubmitInput) (*Submission, error) {
	started := s.now()

	cart, err := s.carts.Load(ctx, identity)
	if err != nil {
		return nil, err
	}
	selected := cart.SelectedEntries()
	if err := validateInput(input, selected); err != nil {
		return nil, err
	}

	walletEnabled := input.UseWallet && identity.IsAccount()
	balance := decimal.Zero
	if walletEnabled {
		balance, err = s.wallets.BalanceByUser(ctx, identity.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet balance")
		}
	}

	req := s.buildRequest(identity, input, selected, walletEnabled)

	ctx = s.logger.WithFields(ctx, map[string]any{
		"identity":       identity.Kind.String(),
		"payment_method": input.PaymentMethod.String(),
		"lines":          len(selected),
	})
	order, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		s.metrics.IncOrder(identity.Kind.String(), "failed")
		return nil, err
	}

	if !identity.IsAccount() {
		if clearErr := s.guestCart.Clear(ctx, identity.DeviceToken); clearErr != nil {
			// The order exists; a stale guest cart is an annoyance, not
			// a failure.
			s.logger.Error(ctx, "clear guest cart after order", clearErr)
		}
	}

	s.metrics.IncOrder(identity.Kind.String(), "created")
	s.metrics.ObserveOrderDuration(identity.Kind.String(), s.now().Sub(started))
	ctx = s.logger.WithOrderID(ctx, order.ID.String())
	s.logger.Info(ctx, "order created")

	return &Submission{
		Order:       order,
		AmountToPay: AmountToPay(order, walletEnabled, balance),
	}, nil
}

func validateInput(input SubmitInput, selected []cartview.Entry) error {
	fields := map[string]string{}
	if !input.PaymentMethod.IsValid() {
		fields["payment_method"] = "unknown payment method"
	}
	mode := input.DeliveryMode
	if mode == "" || !mode.IsValid() {
		fields["delivery_mode"] = "unknown delivery mode"
	}
	if len(selected) == 0 {
		fields["cart"] = "no selected cart lines"
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		fields["customer_name"] = "name is required"
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		fields["customer_phone"] = "phone is required"
	}
	if mode == enums.DeliveryModeDelivery && (input.CityID == nil || *input.CityID <= 0) {
		fields["city_id"] = "city is required for delivery"
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout input invalid").WithDetails(fields)
	}
	return nil
}

func (s *service) buildRequest(identity types.Identity, input SubmitInput, selected []cartview.Entry, walletEnabled bool) commerce.CreateOrderRequest {
	items := make([]commerce.OrderItem, 0, len(selected))
	for _, entry := range selected {
		items = append(items, commerce.OrderItem{ProductID: entry.Product.ID, Quantity: entry.Quantity})
	}

	req := commerce.CreateOrderRequest{
		Items:            items,
		PaymentMethod:    input.PaymentMethod,
		Notes:            input.Notes,
		UseWalletPartial: walletEnabled,
	}
	if input.DeliveryMode == enums.DeliveryModeDelivery {
		carrier := s.defaultCarrier
		if input.DeliveryCompanyID != nil {
			carrier = *input.DeliveryCompanyID
		}
		if carrier > 0 {
			req.DeliveryCompanyID = &carrier
		}
	}

	if identity.IsAccount() {
		// Profile-backed identities omit contact and address so the
		// commerce API resolves them, with one exception: pickup always
		// overrides the stored delivery address.
		if input.DeliveryMode == enums.DeliveryModePickup {
			pickup := s.pickupLocation
			req.CustomerAddress = &pickup
		}
		return req
	}

	req.CustomerName = optional(input.CustomerName)
	req.CustomerEmail = optional(input.CustomerEmail)
	req.CustomerPhone = optional(input.CustomerPhone)
	req.CityID = input.CityID
	req.Area = optional(input.Area)
	if input.DeliveryMode == enums.DeliveryModePickup {
		pickup := s.pickupLocation
		req.CustomerAddress = &pickup
	} else {
		req.CustomerAddress = optional(input.CustomerAddress)
	}
	return req
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
