package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukly/soukly-backend/internal/cartview"
	"github.com/soukly/soukly-backend/internal/checkout"
	"github.com/soukly/soukly-backend/internal/delivery"
	"github.com/soukly/soukly-backend/internal/guestcart"
	"github.com/soukly/soukly-backend/internal/payment"
	"github.com/soukly/soukly-backend/internal/pricing"
	"github.com/soukly/soukly-backend/pkg/config"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubGuestCartService struct{}

func (stubGuestCartService) Items(ctx context.Context, deviceToken string) ([]guestcart.Line, error) {
	return []guestcart.Line{}, nil
}

func (stubGuestCartService) AddItem(ctx context.Context, deviceToken string, productID uuid.UUID, quantity int) error {
	return nil
}

func (stubGuestCartService) UpdateQuantity(ctx context.Context, deviceToken string, productID uuid.UUID, quantity int) error {
	return nil
}

func (stubGuestCartService) RemoveItem(ctx context.Context, deviceToken string, productID uuid.UUID) error {
	return nil
}

func (stubGuestCartService) Clear(ctx context.Context, deviceToken string) error {
	return nil
}

func (stubGuestCartService) ProductQuantity(ctx context.Context, deviceToken string, productID uuid.UUID) (int, error) {
	return 0, nil
}

type stubCartService struct{}

func (stubCartService) Load(ctx context.Context, identity types.Identity) (*cartview.Cart, error) {
	return &cartview.Cart{Entries: []cartview.Entry{}, SelectedIDs: []uuid.UUID{}}, nil
}

func (stubCartService) Toggle(ctx context.Context, identity types.Identity, lineID uuid.UUID) (*cartview.Cart, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line not in cart")
}

func (stubCartService) ToggleAll(ctx context.Context, identity types.Identity) (*cartview.Cart, error) {
	return &cartview.Cart{Entries: []cartview.Entry{}, SelectedIDs: []uuid.UUID{}}, nil
}

type stubPricingService struct{}

func (stubPricingService) Quote(ctx context.Context, identity types.Identity, params pricing.QuoteParams) (*pricing.Quote, error) {
	return &pricing.Quote{Cart: &cartview.Cart{}}, nil
}

type stubDeliveryService struct{}

func (stubDeliveryService) ListCities(ctx context.Context, companyID int64) ([]delivery.CityDTO, error) {
	return []delivery.CityDTO{}, nil
}

func (stubDeliveryService) ListRegions(ctx context.Context, cityID int64) ([]delivery.RegionDTO, error) {
	return []delivery.RegionDTO{}, nil
}

func (stubDeliveryService) ResolveShipping(ctx context.Context, cityID int64, regionID *int64) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Submit(ctx context.Context, identity types.Identity, input checkout.SubmitInput) (*checkout.Submission, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart selection is empty")
}

type stubPaymentService struct{}

func (stubPaymentService) Start(ctx context.Context, input payment.StartInput) (*payment.StartResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubPaymentService) HandleCallback(ctx context.Context, orderID uuid.UUID, event payment.CallbackEvent) (*payment.CallbackResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment session")
}

func (stubPaymentService) ConfirmQR(ctx context.Context, orderID uuid.UUID) (*payment.CallbackResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment session")
}

func (stubPaymentService) Session(ctx context.Context, orderID uuid.UUID) (*payment.Session, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment session")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "soukly"}
	cfg.Delivery = config.DeliveryConfig{DefaultProviderID: 1}

	return NewRouter(
		cfg,
		nil,
		stubPinger{},
		stubPinger{},
		stubGuestCartService{},
		stubCartService{},
		stubPricingService{},
		stubDeliveryService{},
		stubCheckoutService{},
		stubPaymentService{},
	)
}

func TestRouter_HealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if env := rec.Header().Get("X-Soukly-Env"); env != "test" {
			t.Fatalf("%s: unexpected env header %q", path, env)
		}
	}
}

func TestRouter_MetricsExposed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_APIRequiresIdentity(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_DeviceTokenGrantsGuestAccess(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("X-Device-Token", "device-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Data cartview.Cart `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestRouter_GuestCartRoutesWired(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/guest-cart/items", nil)
	req.Header.Set("X-Device-Token", "device-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_PaymentSessionNotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/"+uuid.NewString(), nil)
	req.Header.Set("X-Device-Token", "device-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
