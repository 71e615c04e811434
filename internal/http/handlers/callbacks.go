package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
	"crowdfund/internal/donation"
)

// PaymentCallback is the redirect target the donor lands on after checkout.
// It reconciles the donation against the provider and forwards the donor to
// the receipt, cancelled or failed view. Replayed callbacks settle to the same
// destination without touching the ledger again.
func (a *App) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	gatewayName := chi.URLParam(r, "gateway")
	fallbackID := a.donationFromCookie(r)

	outcome, err := a.Reconciler.Reconcile(r.Context(), gatewayName, r.URL.Query(), fallbackID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMalformedCallback):
			a.Logger.Warn().Err(err).
				Str("gateway", gatewayName).
				Str("query", r.URL.RawQuery).
				Msg("malformed gateway callback")
		case errors.Is(err, domain.ErrNotFound):
			a.Logger.Warn().Err(err).Str("gateway", gatewayName).Msg("callback for unknown donation")
		default:
			a.Logger.Error().Err(err).Str("gateway", gatewayName).Msg("callback reconciliation failed")
		}
		a.redirect(w, r, a.Cfg.FrontendBaseURL+"/payments/error")
		return
	}

	switch outcome.Status {
	case donation.OutcomeApproved:
		a.clearDonationCookie(w)
		target := a.Cfg.FrontendBaseURL + "/donations/receipt?" + url.Values{
			"donation_id": {outcome.DonationID},
			"campaign_id": {outcome.CampaignID},
		}.Encode()
		a.redirect(w, r, target)
	case donation.OutcomeCancelled:
		a.redirect(w, r, a.Cfg.FrontendBaseURL+"/payments/cancelled/"+outcome.DonationID)
	default:
		a.redirect(w, r, a.Cfg.FrontendBaseURL+"/payments/failed/"+outcome.DonationID)
	}
}

func (a *App) redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}
