package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"crowdfund/internal/donation"
	"crowdfund/internal/gateway"
	"crowdfund/internal/http/handlers"
	httpapi "crowdfund/internal/http/httpapi"
	"crowdfund/internal/infra"
	"crowdfund/internal/infra/credentials"
	"crowdfund/internal/infra/geoip"
	"crowdfund/internal/ledger"
	"crowdfund/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sqlRunner := infra.NewSQLRunner(dbpool, logger)
	credStore := credentials.NewStore(sqlRunner)

	// Stored secrets win over env so operators can rotate keys without a
	// redeploy; a restart picks them up.
	gw := cfg.Gateways
	gw.PaystackSecretKey = resolveSecret(ctx, credStore, "paystack", gw.PaystackSecretKey, logger)
	gw.FlutterwaveSecretKey = resolveSecret(ctx, credStore, "flutterwave", gw.FlutterwaveSecretKey, logger)
	gw.MonnifySecretKey = resolveSecret(ctx, credStore, "monnify", gw.MonnifySecretKey, logger)
	gw.StripeSecretKey = resolveSecret(ctx, credStore, "stripe", gw.StripeSecretKey, logger)

	callbackBase := cfg.PublicBaseURL + "/v1/payments/callback"
	cancelBase := cfg.FrontendBaseURL + "/payments/cancelled"
	gatewayHTTP := &http.Client{Timeout: cfg.GatewayTimeout}

	paystack := gateway.NewPaystack(gateway.PaystackOptions{
		SecretKey:   gw.PaystackSecretKey,
		CallbackURL: callbackBase + "/paystack",
		CancelURL:   cancelBase,
		HTTPClient:  gatewayHTTP,
	})
	registry := gateway.NewRegistry(
		paystack,
		gateway.NewFlutterwave(gateway.FlutterwaveOptions{
			SecretKey:   gw.FlutterwaveSecretKey,
			RedirectURL: callbackBase + "/flutterwave",
			AppName:     cfg.AppName,
			Currency:    cfg.Currency.Code,
			HTTPClient:  gatewayHTTP,
		}),
		gateway.NewMonnify(gateway.MonnifyOptions{
			APIKey:       gw.MonnifyAPIKey,
			SecretKey:    gw.MonnifySecretKey,
			ContractCode: gw.MonnifyContractCode,
			RedirectURL:  callbackBase + "/monnify",
			AppName:      cfg.AppName,
			Currency:     cfg.Currency.Code,
			HTTPClient:   gatewayHTTP,
		}),
		gateway.NewStripe(gateway.StripeOptions{
			SecretKey:  gw.StripeSecretKey,
			SuccessURL: callbackBase + "/stripe",
			CancelURL:  cancelBase,
			AppName:    cfg.AppName,
			Currency:   cfg.Currency.Code,
			HTTPClient: gatewayHTTP,
		}),
	)

	ledgerStore := ledger.New(dbpool, sqlRunner, logger)
	orchestrator := donation.NewOrchestrator(ledgerStore, registry, donation.Limits{
		MinInt:   cfg.DonationMinInt,
		MaxInt:   cfg.DonationMaxInt,
		FeeInt:   cfg.DonationFeeInt,
		Currency: cfg.Currency,
	}, logger)
	reconciler := donation.NewReconciler(ledgerStore, registry, logger)

	var geo middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, country prefill disabled")
	} else if resolver != nil {
		geo = resolver.CountryCode
		defer resolver.Close()
	}

	app := &handlers.App{
		SQL:          sqlRunner,
		Cfg:          cfg,
		Logger:       logger,
		Ledger:       ledgerStore,
		Orchestrator: orchestrator,
		Reconciler:   reconciler,
		Gateways:     registry,
		Paystack:     paystack,
		Geo:          geo,
		Credentials:  credStore,
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func resolveSecret(ctx context.Context, store *credentials.Store, gatewayName, fallback string, logger infra.Logger) string {
	secret, err := store.SecretOr(ctx, gatewayName, fallback)
	if err != nil {
		logger.Warn().Err(err).Str("gateway", gatewayName).Msg("stored credential lookup failed, using environment value")
		return fallback
	}
	return secret
}
