package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"crowdfund/internal/domain"
	"crowdfund/internal/donation"
	"crowdfund/internal/gateway"
	"crowdfund/internal/infra"
	"crowdfund/internal/infra/credentials"
	"crowdfund/internal/ledger"
	"crowdfund/internal/middleware"
)

// App bundles everything the endpoint handlers need.
type App struct {
	SQL          infra.SQLExecutor
	Cfg          *infra.Config
	Logger       zerolog.Logger
	Ledger       *ledger.Ledger
	Orchestrator *donation.Orchestrator
	Reconciler   *donation.Reconciler
	Gateways     *gateway.Registry
	Paystack     *gateway.Paystack
	Geo          middleware.CountryLookup
	Credentials  *credentials.Store
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"status": "error",
		"error":  map[string]string{"code": errCode, "message": message},
	})
}

func (a *App) validation(w http.ResponseWriter, verr *domain.ValidationError) {
	a.json(w, http.StatusUnprocessableEntity, map[string]any{
		"status": "error",
		"errors": verr.Fields,
	})
}

// domainError maps ledger and orchestrator failures to responses. Provider and
// database detail never reaches the donor.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := domain.IsValidation(err); ok {
		a.validation(w, verr)
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrInsufficientFunds):
		a.error(w, http.StatusUnprocessableEntity, "insufficient_funds", "your balance does not cover this withdrawal")
	case errors.Is(err, domain.ErrAlreadyFinalized):
		a.error(w, http.StatusConflict, "conflict", "this record was already finalized")
	case errors.Is(err, domain.ErrGatewayUnavailable), errors.Is(err, domain.ErrConfiguration):
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("gateway failure")
		a.error(w, http.StatusBadGateway, "gateway_unavailable", "the payment provider could not be reached, please try again")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "something went wrong")
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// The donation session cookie correlates the returning donor with the pending
// donation when the provider callback carries no metadata (cancellations and
// reference-only redirects). Its value is the signed donation id.
const donationCookie = "donation_session"

func (a *App) setDonationCookie(w http.ResponseWriter, donationID string) {
	token, err := middleware.SignJWT(a.Cfg.JWTSecret, middleware.TokenClaims{
		Sub:    donationID,
		Exp:    time.Now().Add(24 * time.Hour).Unix(),
		Issuer: a.Cfg.AppName,
	})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     donationCookie,
		Value:    token,
		Path:     "/v1/payments",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *App) donationFromCookie(r *http.Request) string {
	c, err := r.Cookie(donationCookie)
	if err != nil {
		return ""
	}
	claims, err := middleware.VerifyJWT(a.Cfg.JWTSecret, c.Value)
	if err != nil {
		return ""
	}
	return claims.Sub
}

func (a *App) clearDonationCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     donationCookie,
		Value:    "",
		Path:     "/v1/payments",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
