package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"crowdfund/internal/domain"
	"crowdfund/internal/http/handlers"
	"crowdfund/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Cfg.AllowedOrigins),
		middleware.Geo(app.Geo),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/location", app.Location)

	r.Route("/v1/campaigns", func(r chi.Router) {
		r.Get("/", app.CampaignsList)
		r.Get("/{slug}", app.CampaignShow)
		r.Get("/{slug}/comments", app.CampaignComments)
	})
	r.Get("/v1/categories", app.CategoriesList)

	r.Route("/v1/donations", func(r chi.Router) {
		r.With(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute)).Post("/", app.DonationsCreate)
		r.Get("/receipt", app.DonationReceipt)
	})

	r.Route("/v1/payments", func(r chi.Router) {
		r.Get("/callback/{gateway}", app.PaymentCallback)
		r.Get("/{view}/{donationID}", app.PaymentStatus)
	})

	r.Route("/v1/banks", func(r chi.Router) {
		r.Get("/", app.BanksList)
		r.Post("/resolve", app.BanksResolve)
	})

	r.Route("/v1/me", func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Cfg.JWTSecret))
		r.Get("/donations", app.MeDonations)
		r.Get("/withdrawals", app.MeWithdrawals)
		r.Post("/withdrawals", app.MeWithdrawalsCreate)
		r.Put("/withdrawal-settings", app.MeWithdrawalSettingsUpsert)
	})

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Cfg.JWTSecret), middleware.RequireRole(domain.RoleAdmin))
		r.Post("/withdrawals/{id}/approve", app.AdminWithdrawalApprove)
		r.Post("/withdrawals/{id}/reject", app.AdminWithdrawalReject)
		r.Put("/gateways/{gateway}/credentials", app.AdminGatewayCredentialSet)
	})

	return r
}
