package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
)

var statusMessages = map[string]string{
	"failed":    "We could not confirm your payment. You have not been charged twice; please try again.",
	"cancelled": "You cancelled the payment. Your donation was not completed.",
	"error":     "Something went wrong while processing your payment.",
}

// PaymentStatus renders the failed / cancelled / error views. The payload
// prefills a retry link with the original donation's campaign, amount and
// reward so the donor can resubmit in one step.
func (a *App) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	message, ok := statusMessages[view]
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "not found")
		return
	}

	donationID := chi.URLParam(r, "donationID")
	d, err := a.Ledger.DonationByID(r.Context(), donationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "donation not found")
			return
		}
		a.domainError(w, r, err)
		return
	}

	c, err := a.Ledger.CampaignByID(r.Context(), d.CampaignID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}

	retry := url.Values{
		"amount":  {strconv.FormatFloat(domain.MinorToMajor(d.AmountInt), 'f', -1, 64)},
		"gateway": {string(d.Gateway)},
	}
	if d.RewardID != "" {
		retry.Set("reward_id", d.RewardID)
	}

	a.json(w, http.StatusOK, map[string]any{
		"status":  view,
		"message": message,
		"donation": map[string]any{
			"id":               d.ID,
			"amount_int":       d.AmountInt,
			"amount_formatted": a.Cfg.Currency.Format(d.AmountInt),
			"gateway":          d.Gateway,
			"reward_id":        d.RewardID,
		},
		"campaign": map[string]any{
			"slug":  c.Slug,
			"title": c.Title,
		},
		"retry_url": a.Cfg.FrontendBaseURL + "/campaigns/" + c.Slug + "?" + retry.Encode(),
	})
}
