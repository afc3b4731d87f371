package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/soukly/soukly-backend/api/routes"
	"github.com/soukly/soukly-backend/internal/accountcart"
	"github.com/soukly/soukly-backend/internal/cartview"
	"github.com/soukly/soukly-backend/internal/checkout"
	"github.com/soukly/soukly-backend/internal/delivery"
	"github.com/soukly/soukly-backend/internal/guestcart"
	"github.com/soukly/soukly-backend/internal/payment"
	"github.com/soukly/soukly-backend/internal/pricing"
	"github.com/soukly/soukly-backend/internal/products"
	"github.com/soukly/soukly-backend/internal/wallet"
	"github.com/soukly/soukly-backend/pkg/commerce"
	"github.com/soukly/soukly-backend/pkg/config"
	"github.com/soukly/soukly-backend/pkg/db"
	"github.com/soukly/soukly-backend/pkg/gateway"
	"github.com/soukly/soukly-backend/pkg/logger"
	"github.com/soukly/soukly-backend/pkg/metrics"
	"github.com/soukly/soukly-backend/pkg/migrate"
	"github.com/soukly/soukly-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return multierr.Append(err, dbClient.Close())
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return multierr.Append(err, dbClient.Close())
	}

	closeAll := func() error {
		return multierr.Combine(redisClient.Close(), dbClient.Close())
	}

	commerceClient, err := commerce.NewClient(cfg.Commerce, logg)
	if err != nil {
		return multierr.Append(err, closeAll())
	}
	gatewayClient, err := gateway.NewClient(cfg.Gateway, logg)
	if err != nil {
		return multierr.Append(err, closeAll())
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	productsRepo := products.NewRepository(dbClient.DB())
	accountCartRepo := accountcart.NewRepository(dbClient.DB())
	walletRepo := wallet.NewRepository(dbClient.DB())
	deliveryRepo := delivery.NewRepository(dbClient.DB())

	guestCartStore, err := guestcart.NewRedisStore(redisClient, cfg.GuestCart)
	if err != nil {
		return multierr.Append(err, closeAll())
	}
	guestCartService, err := guestcart.NewService(guestCartStore, productsRepo)
	if err != nil {
		return multierr.Append(err, closeAll())
	}

	selectionStore, err := cartview.NewRedisSelectionStore(redisClient, cfg.GuestCart.TTL)
	if err != nil {
		return multierr.Append(err, closeAll())
	}
	cartService, err := cartview.NewService(guestCartStore, accountCartRepo, productsRepo, selectionStore)
	if err != nil {
		return multierr.Append(err, closeAll())
	}

	deliveryService, err := delivery.NewService(deliveryRepo)
	if err != nil {
		return multierr.Append(err, closeAll())
	}

	pricingService, err := pricing.NewService(cartService, walletRepo, deliveryService)
	if err != nil {
		return multierr.Append(err, closeAll())
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Carts:     cartService,
		Wallets:   walletRepo,
		Orders:    commerceClient,
		GuestCart: guestCartStore,
		Logger:    logg,
		Metrics:   checkoutMetrics,
		Payment:   cfg.Payment,
		Delivery:  cfg.Delivery,
	})
	if err != nil {
		return multierr.Append(err, closeAll())
	}

	sessionStore, err := payment.NewRedisSessionStore(redisClient, cfg.Payment.SessionTTL)
	if err != nil {
		return multierr.Append(err, closeAll())
	}
	paymentService, err := payment.NewService(payment.ServiceParams{
		Sessions:   sessionStore,
		Gateway:    gatewayClient,
		Logger:     logg,
		Metrics:    checkoutMetrics,
		Payment:    cfg.Payment,
		GatewayCfg: cfg.Gateway,
	})
	if err != nil {
		return multierr.Append(err, closeAll())
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			guestCartService,
			cartService,
			pricingService,
			deliveryService,
			checkoutService,
			paymentService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return multierr.Append(err, closeAll())
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	return multierr.Combine(server.Shutdown(shutdownCtx), closeAll())
}
