package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soukly/soukly-backend/api/controllers"
	"github.com/soukly/soukly-backend/api/middleware"
	"github.com/soukly/soukly-backend/internal/cartview"
	checkoutsvc "github.com/soukly/soukly-backend/internal/checkout"
	"github.com/soukly/soukly-backend/internal/delivery"
	"github.com/soukly/soukly-backend/internal/guestcart"
	paymentsvc "github.com/soukly/soukly-backend/internal/payment"
	"github.com/soukly/soukly-backend/internal/pricing"
	"github.com/soukly/soukly-backend/pkg/config"
	"github.com/soukly/soukly-backend/pkg/db"
	"github.com/soukly/soukly-backend/pkg/logger"
	"github.com/soukly/soukly-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	guestCartService guestcart.Service,
	cartService cartview.Service,
	pricingService pricing.Service,
	deliveryService delivery.Service,
	checkoutService checkoutsvc.Service,
	paymentService paymentsvc.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(cfg.JWT, logg))

		r.Route("/guest-cart", func(r chi.Router) {
			r.Get("/items", controllers.GuestCartItems(guestCartService, logg))
			r.Post("/items", controllers.GuestCartAdd(guestCartService, logg))
			r.Put("/items/{productID}", controllers.GuestCartUpdateQuantity(guestCartService, logg))
			r.Delete("/items/{productID}", controllers.GuestCartRemove(guestCartService, logg))
			r.Delete("/items", controllers.GuestCartClear(guestCartService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(cartService, logg))
			r.Post("/selection/{lineID}/toggle", controllers.CartToggleSelection(cartService, logg))
			r.Post("/selection/toggle-all", controllers.CartToggleAll(cartService, logg))
			r.Post("/quote", controllers.CartQuote(pricingService, logg))
		})

		r.Route("/delivery", func(r chi.Router) {
			r.Get("/cities", controllers.DeliveryCities(deliveryService, cfg.Delivery, logg))
			r.Get("/cities/{cityID}/regions", controllers.DeliveryRegions(deliveryService, logg))
		})

		r.Post("/checkout", controllers.CheckoutSubmit(checkoutService, logg))

		r.Route("/payments", func(r chi.Router) {
			r.Post("/start", controllers.PaymentStart(paymentService, logg))
			r.Get("/{orderID}", controllers.PaymentSession(paymentService, logg))
			r.Post("/{orderID}/gateway/complete", controllers.PaymentGatewayComplete(paymentService, logg))
			r.Post("/{orderID}/gateway/error", controllers.PaymentGatewayError(paymentService, logg))
			r.Post("/{orderID}/gateway/cancel", controllers.PaymentGatewayCancel(paymentService, logg))
			r.Post("/{orderID}/qr/confirm", controllers.PaymentQRConfirm(paymentService, logg))
		})
	})

	return r
}
